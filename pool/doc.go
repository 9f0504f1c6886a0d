// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pool holds the order pool: platform names mapped to the order
numbers eligible for drawing.

# Ordering

Platforms keep insertion order. Find scans platforms in that order and
returns the first match, and MarshalJSON writes them in that order:

	{
	  "抖音": ["D2023001"],
	  "天猫": []
	}

# Importing

Import never mutates the pool it is given:

	next, stats, applied := pool.Import(current, records, pool.Append)
	if applied {
		current = next
	}

An Append import that adds nothing is not applied even when it found
duplicates or errors. A Replace import with any input is applied, which
allows replacing the pool with only invalid rows.
*/
package pool
