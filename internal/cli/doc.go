// Package cli is the command-line surface of runas.
//
// Commands that talk to the cluster (health, reset-password, features) run
// through the bootstrap orchestrator: a temporary superuser is written to the
// file realm, the cluster is probed as that user, the command runs and the
// user is removed again. sweep works on the local files only and removes
// temporary users left behind by runs that were killed.
package cli
