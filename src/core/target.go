package core

// TargetName identifies a target within a TargetGraph. Unlike Please's
// BuildLabel this carries no package/subrepo structure of its own; the
// collaborators that produce the graph (out of scope for this core) are
// responsible for making names unique within a build.
type TargetName string

func (n TargetName) String() string { return string(n) }
