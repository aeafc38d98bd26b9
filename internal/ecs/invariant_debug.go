//go:build simdebug

package ecs

const strictInvariants = true
