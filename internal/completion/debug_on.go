//go:build completiondebug

package completion

const debugInvariants = true
