// Package ytcurate maintains a local ledger of YouTube channel videos
// and reconciles curated playlists against it.
//
// The pipeline has three stages, exposed as subcommands of the ytcurate
// binary and as sub-packages for programmatic use:
//
//   - scan: resolve configured channels, walk their public and
//     members-only upload feeds and merge the results into the video
//     ledger, recording a scan watermark per attempt
//   - rebuild: project the hand-authored season/episode corpus through
//     each playlist's inclusion predicate into an ordered desired list
//   - publish: converge each remote playlist to its desired membership
//     and order with a minimal sequence of mutations
//
// All persisted state lives in a directory of sorted, human-diffable
// YAML files managed by the storage package. Scan scheduling is derived
// from the recorded scan history on every run; nothing caches a "next
// due" time.
//
// # Sub-packages
//
//   - cli: the ytcurate command
//   - config: YAML configuration with environment expansion
//   - storage: the record store and video ledger
//   - youtube: the platform API client (feeds, channels, playlists)
//   - scan: scan scheduling and execution
//   - curation: the season corpus and playlist projection
//   - reconcile: playlist diff-and-patch
//
// # Error Handling
//
// Sub-packages expose sentinel errors for conditions callers branch on:
//
//	if errors.Is(err, ytcurate.ErrListingNotFound) {
//		// channel has no members tier; treated as an empty feed
//	}
//
// and wrapper types carrying operation context:
//
//	var storageErr *ytcurate.StorageError
//	if errors.As(err, &storageErr) {
//		fmt.Printf("%s %s failed: %v\n", storageErr.Op, storageErr.Entity, storageErr.Err)
//	}
package ytcurate
