// Package realm reads and writes the two files of the file realm: the users
// file (username:hash) and the users_roles file (role:user1,user2).
//
// Both files are always rewritten as a whole through filex.WriteAtomic. A
// missing file is reported as common.ErrConfigMissing because the
// surrounding authentication subsystem is expected to be configured already.
//
// Snapshot captures owner and permission bits before a mutation so that a
// drift caused by the rewrite can be reported to the operator afterwards.
package realm
