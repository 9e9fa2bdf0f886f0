// Package api implements the zzapi HTTP surface.
//
// Routes:
//
//	GET /zaiko/events/{event_id}  {"owner_name": "..."}
//	GET /square.png?u=<url>[&w=][&h=]  letterboxed PNG
//	GET /health
//	GET /metrics
//
// The two API routes run behind the response cache, with the freshness
// annotator between the cache and the handlers so the stored entry carries
// its Cache-Control directive. writeError is the only place mapping error
// kinds to statuses.
package api
