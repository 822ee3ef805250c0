package steem

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/steemkit/steembridge/pkg/rpc"
)

// CapabilitySet maps the sub-APIs a node publishes to their numeric ids. It is
// built once by discovery and never modified afterwards.
type CapabilitySet struct {
	ids map[rpc.SubAPI]uint32
}

// NewCapabilitySet returns a set holding a copy of ids.
func NewCapabilitySet(ids map[rpc.SubAPI]uint32) CapabilitySet {
	return CapabilitySet{ids: maps.Clone(ids)}
}

// ID returns the numeric id of api, if the node publishes it.
func (s CapabilitySet) ID(api rpc.SubAPI) (uint32, bool) {
	id, ok := s.ids[api]
	return id, ok
}

func (s CapabilitySet) Has(api rpc.SubAPI) bool {
	_, ok := s.ids[api]
	return ok
}

func (s CapabilitySet) Len() int {
	return len(s.ids)
}

// Available returns the published sub-APIs, known ones first in probing order.
func (s CapabilitySet) Available() []rpc.SubAPI {
	out := make([]rpc.SubAPI, 0, len(s.ids))
	for _, api := range rpc.KnownSubAPIs {
		if s.Has(api) {
			out = append(out, api)
		}
	}

	var extra []rpc.SubAPI
	for api := range s.ids {
		if !api.IsKnown() {
			extra = append(extra, api)
		}
	}
	slices.Sort(extra)

	return append(out, extra...)
}

// Missing returns the known sub-APIs the node does not publish.
func (s CapabilitySet) Missing() []rpc.SubAPI {
	var out []rpc.SubAPI
	for _, api := range rpc.KnownSubAPIs {
		if !s.Has(api) {
			out = append(out, api)
		}
	}
	return out
}

// IDs returns a copy of the underlying mapping.
func (s CapabilitySet) IDs() map[rpc.SubAPI]uint32 {
	return maps.Clone(s.ids)
}

func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	ids := s.ids
	if ids == nil {
		ids = map[rpc.SubAPI]uint32{}
	}
	return json.Marshal(ids)
}

func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var ids map[rpc.SubAPI]uint32
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.ids = ids
	return nil
}
