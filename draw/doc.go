// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package draw runs a drawing round over the order pool.

# States

A Round is either idle or rolling:

	idle --Start--> rolling --Select--> idle
	rolling --Tick--> rolling (new candidate)

While rolling the caller drives Tick on its own timer; each tick picks a
candidate uniformly from the eligible set, which is every order of the
selected platforms not yet picked this round. Select records the current
candidate. Because picked orders leave the eligible set, a round never
holds the same order twice.

# Starting

Start is refused when no platform is selected, when the selected
platforms hold no more orders than the target, when nothing is eligible,
or when the round already has its target. CanStart reports the reason
without changing state.

# Completing

Once the round holds exactly Target entries, Complete returns a Result
and clears the round. Committing the result to the ledger is left to the
caller.
*/
package draw
