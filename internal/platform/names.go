package platform

import (
	"os/user"
	"strconv"
	"sync"
)

// SystemResolver resolves owner and group names through the host user
// database. Lookups are cached per ID, including misses.
//
// The zero value is ready to use and safe for concurrent calls.
type SystemResolver struct {
	users  sync.Map // uint32 -> lookupResult
	groups sync.Map // uint32 -> lookupResult
}

type lookupResult struct {
	name string
	ok   bool
}

// UserName returns the login name for uid.
func (r *SystemResolver) UserName(uid uint32) (string, bool) {
	return cached(&r.users, uid, func(id string) (string, error) {
		u, err := user.LookupId(id)
		if err != nil {
			return "", err
		}
		return u.Username, nil
	})
}

// GroupName returns the group name for gid.
func (r *SystemResolver) GroupName(gid uint32) (string, bool) {
	return cached(&r.groups, gid, func(id string) (string, error) {
		g, err := user.LookupGroupId(id)
		if err != nil {
			return "", err
		}
		return g.Name, nil
	})
}

func cached(m *sync.Map, id uint32, lookup func(string) (string, error)) (string, bool) {
	if v, ok := m.Load(id); ok {
		res := v.(lookupResult) //nolint:errcheck // map only holds lookupResult
		return res.name, res.ok
	}
	name, err := lookup(strconv.FormatUint(uint64(id), 10))
	res := lookupResult{name: name, ok: err == nil && name != ""}
	m.Store(id, res)
	return res.name, res.ok
}
