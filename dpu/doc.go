// Package dpu defines the contracts between a display processing unit's
// pipeline drivers and the power-management layers built on top of them.
package dpu
