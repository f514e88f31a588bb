// Command kbpipeline crawls one restaurant website and writes a validated
// restaurant record, a knowledge file and a quality report per location,
// plus a global index.
//
// Usage:
//
//	kbpipeline -url https://www.pizzeria-roma.se [-config kb.yaml]
//	kbpipeline -url https://www.pizzeria-roma.se -pages roma-crawl.json
//
// With -pages the crawl is skipped and the saved pages are processed again.
// Configuration keys may be overridden with KB_ environment variables, for
// example KB_OUTPUT_PROVIDER=gcs.
package main
