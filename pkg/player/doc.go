// Package player plays a score document in time.
//
// Playback runs in two phases. [Resolve] first computes a [Plan]: the
// order of measures after repeats, endings and D.C./D.S. jumps
// ([Sequence]), the running speed and volume of every column (tempo and
// dynamics marks, with accel./rit./cresc./dim. ramps interpolated over
// their extension), and the timed note events of every step. A [Player]
// then walks the plan and hands notes to an audio collaborator.
//
// # Scheduling
//
// The player has no goroutines and no timers of its own. The caller drives
// it with [Player.Tick], passing the current time and receiving the
// deadline of the next call:
//
//	p := player.New(doc, player.WithAudio(out))
//	if err := p.Play(time.Now()); err != nil {
//	    return err
//	}
//	for {
//	    next, ok := p.Tick(time.Now())
//	    if !ok {
//	        break
//	    }
//	    time.Sleep(time.Until(next))
//	}
//
// [Player.Run] wraps this loop with a real timer and [Render] runs it on a
// virtual clock, which makes playback deterministic in tests and fast for
// file export.
//
// # State
//
// A player is Stopped, Playing or Paused. Play from Stopped resolves the
// document again; Play from Paused resumes at the next step. Pause keeps
// the position and Stop rewinds it. Listeners registered with OnCursor
// and OnState are called synchronously from Tick, Play, Pause and Stop.
package player
