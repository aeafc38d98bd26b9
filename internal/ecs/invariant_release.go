//go:build !simdebug

package ecs

const strictInvariants = false
