/*
tickpipe allows to stream generated values ("ticks") from a Generator into a Sink at a bounded rate, and to pause and resume that stream safely at any time.

A Pipeline owns at most one background delivery loop. The loop runs as a task of a goroutine pool (see Executor) and repeats:

- check it is still the current loop instance, otherwise stop without delivering anything
- pull the next tick from the Generator. Exhaustion, absence or a panic of the Generator is fatal to the loop: it stops, the pipeline is paused again and the error is reported by Err and the OnStop callback
- deliver the tick to the Sink. A failing (or panicking) Sink is logged and counted, the loop goes on with the next tick
- wait 1/rate seconds, or not at all when rate is 0. The wait is interrupted by Pause

Pause is a true barrier: once it returns, the Sink receives nothing until the next Resume. Resume always pauses first, so two loops never deliver at the same time,
and a loop which finds out that it has been superseded stops by itself.

Next bypasses the loop and pulls one tick straight from the Generator, whatever the pipeline state is. The pipeline does not synchronize Next with its own loop:
if Next is used while running, the Generator has to be safe for concurrent use (see Synchronized).

The Sink is called synchronously by the loop. A slow Sink stalls the rate schedule: the interval is counted from the end of a delivery, jitter is not compensated.

For instance:

	src, _ := tickpipe.New[int](tickpipe.FromSlice(lo.Range(100)), sink, tickpipe.WithRate(10))
	defer src.Close()

	_ = src.Resume() // ten ticks per second are delivered to sink
	time.Sleep(time.Second)
	src.Pause() // sink won't receive anything from now on
	v, _ := src.Next()
*/

package tickpipe
