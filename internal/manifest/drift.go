package manifest

// DriftEntry records a single difference found by Drift. For Modified
// entries both LocalValue and CloudValue are set; for LocalOnly/CloudOnly
// only the side that has the key is set.
type DriftEntry struct {
	Key        string
	Service    string
	ScopeName  string // display name, scope-qualified when the entry is under a scope
	LocalValue string
	CloudValue string
}

// DriftResult partitions the comparison between a local and a remote
// manifest into three disjoint sets. It carries no side effects; it is pure
// data describing a point-in-time comparison.
type DriftResult struct {
	LocalOnly []DriftEntry
	CloudOnly []DriftEntry
	Modified  []DriftEntry
}

// Drift compares local and cloud, covering both the default (unscoped) tree
// and every scope tree.
func Drift(local, cloud *Manifest) DriftResult {
	var result DriftResult

	compareTree := func(scopeName string, localSvcs, cloudSvcs ServiceMap) {
		services := map[string]bool{}
		for svc := range localSvcs {
			services[svc] = true
		}
		for svc := range cloudSvcs {
			services[svc] = true
		}
		for svc := range services {
			compareVars(scopeName, svc, localSvcs[svc], cloudSvcs[svc], &result)
		}
	}

	compareTree("", local.Services, cloud.Services)

	scopeNames := map[string]bool{}
	for scope := range local.Scopes {
		scopeNames[scope] = true
	}
	for scope := range cloud.Scopes {
		scopeNames[scope] = true
	}
	for scope := range scopeNames {
		compareTree(scope, local.Scopes[scope], cloud.Scopes[scope])
	}

	return result
}

func compareVars(scopeName, service string, localVars, cloudVars VarMap, result *DriftResult) {
	keys := map[string]bool{}
	for k := range localVars {
		keys[k] = true
	}
	for k := range cloudVars {
		keys[k] = true
	}
	for key := range keys {
		lv, lok := localVars[key]
		cv, cok := cloudVars[key]
		switch {
		case lok && !cok:
			result.LocalOnly = append(result.LocalOnly, DriftEntry{Key: key, Service: service, ScopeName: scopeName, LocalValue: lv})
		case !lok && cok:
			result.CloudOnly = append(result.CloudOnly, DriftEntry{Key: key, Service: service, ScopeName: scopeName, CloudValue: cv})
		case lok && cok && lv != cv:
			result.Modified = append(result.Modified, DriftEntry{Key: key, Service: service, ScopeName: scopeName, LocalValue: lv, CloudValue: cv})
		}
	}
}
