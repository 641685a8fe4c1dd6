// Package thread
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package thread runs a callable on a dedicated OS thread created with explicit
// attributes (stack size, normalized priority, CPU affinity, debug name) and
// manages that thread's identity and termination.
//
// A Thread is created joinable. Its owner must end its life with exactly one of
// Join or Detach. Ownership moves with Move, MoveFrom and Swap; a Thread must
// never be copied. Breaking the lifecycle contract (releasing, move-assigning
// over or garbage-collecting a joinable Thread, or joining a thread from
// itself) terminates the process.
//
// Creation is a half-synchronous launch: New returns once the new thread has
// taken ownership of the callable and its argument copies, not once the
// callable has finished.
//
//	t, err := thread.New(func(s string) { fmt.Println(s) }, "hello, world")
//	if err != nil {
//		return err
//	}
//	return t.Join()
package thread
