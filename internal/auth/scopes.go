package auth

// BaseScopes are always required for user identity.
var BaseScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"openid",
}

// ServiceScopes maps service names to the OAuth scopes their tools need.
// The image tools only read file metadata and permissions.
var ServiceScopes = map[string][]string{
	"drive": {
		"https://www.googleapis.com/auth/drive.readonly",
	},
}

// ReadOnlyScopes maps service names to their read-only OAuth scopes.
// Used when --read-only is set.
var ReadOnlyScopes = map[string][]string{
	"drive": {
		"https://www.googleapis.com/auth/drive.metadata.readonly",
	},
}

// AllScopes returns the combined set of scopes for the given services and mode.
// An empty services list means every service.
func AllScopes(services []string, readOnly bool) []string {
	seen := make(map[string]bool)
	var scopes []string
	add := func(list []string) {
		for _, s := range list {
			if !seen[s] {
				scopes = append(scopes, s)
				seen[s] = true
			}
		}
	}

	add(BaseScopes)

	scopeMap := ServiceScopes
	if readOnly {
		scopeMap = ReadOnlyScopes
	}

	if len(services) == 0 {
		for _, svcScopes := range scopeMap {
			add(svcScopes)
		}
		return scopes
	}
	for _, svc := range services {
		add(scopeMap[svc])
	}
	return scopes
}
