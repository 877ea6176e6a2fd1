// Package resolver implements taskqueue.Resolver against the video parse
// service.
//
// [Client] posts each link to {base}/parse and maps the JSON answer to a
// taskqueue.Result. A 200 response can still carry a failure, either as
// result.error or as a result with no video_url; both become an
// *errors.ResolutionFailure exactly like a non-2xx status. [Cache] wraps any
// resolver and memoizes successes by link.
//
//	client := resolver.New(resolver.Options{BaseURL: cfg.Resolver.BaseURL, Token: cfg.Resolver.Token})
//	sched := taskqueue.NewScheduler(store, resolver.NewCache(client), opts)
package resolver
