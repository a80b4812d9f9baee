// Package httpclient is the REST client used by the domain stores.
//
// Every request runs through a chain of interceptors, each an
// http.RoundTripper wrapper. The first interceptor given is the outermost:
//
//	client := httpclient.New(httpclient.Config{BaseURL: "https://api.example.com"},
//	    httpclient.WithInterceptors(
//	        httpclient.RequestID(),
//	        httpclient.Logging(logger),
//	        httpclient.Bearer(httpclient.StorageToken(store, "token")),
//	    ),
//	)
//
//	var info api.UserInfo
//	err := client.Get(ctx, "/user/info", nil, &info)
//
// Failures are never hidden or retried. Transport errors come back exactly as
// net/http returns them; non-2xx responses come back as *StatusError.
package httpclient
