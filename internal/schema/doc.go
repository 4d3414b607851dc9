// Package schema inspects the layouts container schema and answers which
// top-level fields of a container record are dynamic (one per layout kind)
// and which are static (shared by every kind).
//
// The schema is a kwalify-style YAML document. A field whose rule declares a
// nested mapping is dynamic:
//
//	mapping:
//	  id:
//	    type: str
//	  detailsV2:          # dynamic, collection "tabs"
//	    type: map
//	    mapping:
//	      tabs:
//	        type: seq
//
// The first of "sections", "tabs" or "fields" declared in the nested mapping
// is the collection that carries the kind's presentation data.
//
// A dynamic field is indicator-classified when its name contains "indicator"
// or when it is listed in the optional top-level "indicatorFields" sequence.
//
// A copy of the container schema is embedded and returned by Default.
package schema
