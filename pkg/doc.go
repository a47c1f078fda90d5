// Package pkg holds the libraries behind godepscan.
//
// # Overview
//
// godepscan lists the dependencies pinned by the legacy Go dependency
// managers: dep (Gopkg.lock), godep (Godeps.json) and vndr (vendor.conf).
// Every manifest is reduced to the same flat record shape.
//
// # Packages
//
//   - [github.com/matzehuels/godepscan/pkg/deps]: the Dependency record,
//     identity helpers and the manifest parser interfaces.
//   - [github.com/matzehuels/godepscan/pkg/deps/golang]: the three
//     manifest parsers plus Load and Collect.
//   - [github.com/matzehuels/godepscan/pkg/pipeline]: a cached runner
//     shared by the CLI and the HTTP server.
//   - [github.com/matzehuels/godepscan/pkg/cache]: file, Redis and no-op
//     result caches.
//   - [github.com/matzehuels/godepscan/pkg/errors]: coded errors.
//   - [github.com/matzehuels/godepscan/pkg/observability]: parse, cache and
//     HTTP hooks.
//   - [github.com/matzehuels/godepscan/pkg/buildinfo]: version metadata.
//
// # Quick start
//
//	records, err := golang.Load(ctx, "/src/app", golang.Dep, golang.Config{})
//	if err != nil {
//	    return err
//	}
//	for _, d := range records {
//	    fmt.Println(d.Namespace, d.Name, d.Version, d.Revision)
//	}
package pkg
