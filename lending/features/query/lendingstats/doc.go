// Package lendingstats provides the counters of the lending dashboard.
package lendingstats
