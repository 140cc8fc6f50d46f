package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithIndexCount sets the number of indices drawn for the provider's geometry.
//
// Parameters:
//   - count: the index count
//
// Returns:
//   - BindGroupProviderOption: a function that sets the index count
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}

// WithVersion sets the initial version tag of the provider's geometry.
//
// Parameters:
//   - version: the version tag
//
// Returns:
//   - BindGroupProviderOption: a function that sets the version
func WithVersion(version uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.version = version
	}
}
