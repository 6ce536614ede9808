// Package collect gathers the raw change signals of a release.
//
// A Resolver turns a tag (or "latest") into a release.Ref. Collectors then
// read one category of signal each: pull requests, commits, or the API
// schema diff. Collectors never fail a run. Each reports an Output with a
// tri-state Status, and Run bounds every collector by its own timeout:
//
//	src, _ := collect.NewGitHubSource(client, "acme/widgets")
//	ref, err := src.Resolve(ctx, "latest")
//	outputs := collect.Run(ctx, ref, 20*time.Second,
//	    src.PullRequests(),
//	    &collect.APIDiffCollector{
//	        Path:     "openapi.yaml",
//	        Current:  collect.FileSnapshot("openapi.yaml"),
//	        Previous: src.Snapshot("openapi.yaml"),
//	    },
//	)
package collect
