//go:build linux && !tinygo

package main

import (
	"io"
	"time"

	"gohome/core"
	"gohome/standalone"
)

type chunk struct {
	data []byte
	err  error
}

// serve feeds input to mgr and writes its replies to out until input ends.
// Between inputs it publishes clock as the system time and runs due timers,
// so queued dwells finish on their own. With eofExits false an io.EOF from
// in is a read timeout, not the end.
func serve(mgr *standalone.Manager, clock func() uint32, in io.Reader, out io.Writer, eofExits bool) error {
	chunks := make(chan chunk)
	go readInput(in, chunks, eofExits)

	poll := time.NewTicker(time.Millisecond)
	defer poll.Stop()

	// banner
	if err := flush(mgr, out); err != nil {
		return err
	}
	for {
		select {
		case c := <-chunks:
			for _, b := range c.data {
				if err := mgr.ProcessByte(b); err != nil {
					core.DebugPrintln("[CMD] " + err.Error())
				}
			}
			if err := flush(mgr, out); err != nil {
				return err
			}
			if c.err == io.EOF {
				return nil
			}
			if c.err != nil {
				return c.err
			}
		case <-poll.C:
			core.SetTime(clock())
			core.ProcessTimers()
		}
	}
}

func readInput(in io.Reader, chunks chan<- chunk, eofExits bool) {
	buf := make([]byte, 256)
	for {
		n, err := in.Read(buf)
		if err == io.EOF && !eofExits {
			err = nil
		}
		if n > 0 || err != nil {
			data := make([]byte, n)
			copy(data, buf[:n])
			chunks <- chunk{data: data, err: err}
		}
		if err != nil {
			return
		}
	}
}

func flush(mgr *standalone.Manager, out io.Writer) error {
	if output := mgr.GetOutput(); len(output) > 0 {
		_, err := out.Write(output)
		return err
	}
	return nil
}
