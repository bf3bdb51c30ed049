// Package billyfs mounts go-billy filesystems as engine archives, so an
// in-memory tree or a host directory can sit in the search path next to
// archive files.
package billyfs
