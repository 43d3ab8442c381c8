package wfobject

import "sync"

// Part types are interned process-wide by material name, so a "steel" part
// loaded from one file and a "steel" part loaded from another carry the same
// type id. Grammar rules, relative-pose templates, and structure encodings
// all key on these ids, and the two-exemplar entry points rely on them
// agreeing across files.
var (
	typeMu    sync.Mutex
	typeIDs   = map[string]int{}
	typeNames []string
)

// TypeOf returns the type id for a material name, assigning the next free
// id the first time a name is seen. Ids are dense and start at zero.
func TypeOf(name string) int {
	typeMu.Lock()
	defer typeMu.Unlock()
	id, ok := typeIDs[name]
	if !ok {
		id = len(typeNames)
		typeIDs[name] = id
		typeNames = append(typeNames, name)
	}
	return id
}

// TypeName returns the material name behind a type id, or "" for ids that
// were never assigned.
func TypeName(id int) string {
	typeMu.Lock()
	defer typeMu.Unlock()
	if id < 0 || id >= len(typeNames) {
		return ""
	}
	return typeNames[id]
}
