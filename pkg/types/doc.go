// Package types defines the shared value types of the retrieval core:
// documents, retrieval hits, composed answers, query intents, and the
// error taxonomy used at component boundaries.
//
// Types here carry no behavior beyond validation and metadata accessors;
// all orchestration lives in the internal packages.
package types
