// Postd serves a collection of blog posts over HTTP. The collection lives in
// memory only: it starts with two seed posts on every run and is lost on exit.
//
// Requests and responses are JSON. POST /posts/ creates a post and responds
// with its id; PUT and DELETE on /posts/{post_id} replace or remove one, and
// GET returns it. Absent ids yield 404, payloads lacking a string "title" or
// "content" yield 422. GET /version reports the API version and GET /stats the
// number of successful calls to each route since start.
//
// Configuration is read from the file named by -config, in relaxed JSON
// (see github.com/rogpeppe/rjson), e.g.:
//
//	{
//		address: ":8000"
//		debug: true
//		rate_limit: 100
//		rate_burst: 10
//	}
package main // import "github.com/nicolagi/postd/cmd/postd"
