// Package crawler resolves the crawl frontier of a restaurant site and fetches
// its pages concurrently with bounded retry, redirect following and rate-limit
// back-off. Crawling one page never aborts crawling the others.
package crawler
