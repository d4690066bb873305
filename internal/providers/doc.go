// Package providers implements the upstream metadata clients.
//
// Two sources are supported. Modrinth accepts a list of project ids in one
// request, so a batch is always a single HTTP call. CurseForge is queried one
// mod id per request; a batch fans those requests out concurrently (bounded
// by a configurable limit) and joins the per-id results without cancelling
// siblings when one of them fails.
//
// Every request carries the packwizml User-Agent and a JSON content type.
// The CurseForge API key is sent only in the x-api-key header. Non-success
// responses surface as [apperr.UpstreamError] and undecodable bodies as
// [apperr.DecodeError]. Nothing is retried.
//
// HTTP clients are injected through [Options] so that tests can redirect
// calls to local httptest servers. Use [New] to obtain a Fetcher by source.
package providers
