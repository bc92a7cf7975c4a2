package domain

// ForgeProject is one repository as reported by a hosting provider.
type ForgeProject struct {
	Name      string
	Namespace string
	SSHURL    string
	HTTPSURL  string
}

// URL returns the clone URL of the project for the given remote kind.
func (p ForgeProject) URL(kind RemoteKind) string {
	if kind == RemoteKindHTTPS {
		return p.HTTPSURL
	}
	return p.SSHURL
}

// FullName is the namespace-qualified project name.
func (p ForgeProject) FullName() string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + "/" + p.Name
}

// ForgeFilter selects which projects a provider search returns. At least one
// selector must be set.
type ForgeFilter struct {
	Users  []string
	Groups []string
	Owner  bool
	Access bool
}

func (f ForgeFilter) Empty() bool {
	return len(f.Users) == 0 && len(f.Groups) == 0 && !f.Owner && !f.Access
}
