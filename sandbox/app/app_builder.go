package app

// AppBuilderOption is a functional option for configuring an App via NewApp.
type AppBuilderOption func(*app)

// WithConfigPath names the file the configuration was loaded from. When set, the file is
// watched and environment settings are re-applied on every valid change.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - AppBuilderOption: option function to apply
func WithConfigPath(path string) AppBuilderOption {
	return func(a *app) {
		a.configPath = path
	}
}
