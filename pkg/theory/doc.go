// Package theory provides the pitch and rhythm value types consumed by the
// score model, the layout pipeline and the player.
//
// Everything here is an immutable value: parse it, read its diatonic or
// chromatic id or its tick length, and pass it around by value. Parsers
// return *errors.Error values tagged with the NOTE, SCALE, KEY_SIGNATURE or
// TIME_SIGNATURE code.
//
// # Ticks
//
// Durations are measured in ticks. A quarter note is [TicksPerQuarter] ticks,
// so a whole note is 384 and a 32nd note (the arpeggio stagger) is 12.
//
//	r, _ := theory.ParseRhythm("8.")
//	r.Ticks() // 72
package theory
