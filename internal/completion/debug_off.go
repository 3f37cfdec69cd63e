//go:build !completiondebug

package completion

const debugInvariants = false
