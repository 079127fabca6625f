package spatial

import "os"

// SpatiaLite's ImportSHP/ExportSHP family refuses to touch the filesystem
// unless SPATIALITE_SECURITY=relaxed is set in the environment before
// mod_spatialite is loaded.
const (
	securityEnv     = "SPATIALITE_SECURITY"
	securityRelaxed = "relaxed"
	securityStrict  = "strict"
)

// RelaxSecurity enables SpatiaLite's filesystem I/O functions. Must be
// called before the database is opened to take effect.
func RelaxSecurity() error {
	return os.Setenv(securityEnv, securityRelaxed)
}

// StrictSecurity disables SpatiaLite's filesystem I/O functions for
// databases opened afterwards.
func StrictSecurity() error {
	return os.Setenv(securityEnv, securityStrict)
}

// SecurityRelaxed reports whether filesystem I/O functions are enabled.
func SecurityRelaxed() bool {
	return os.Getenv(securityEnv) == securityRelaxed
}
