//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-vox/dsp"
	"github.com/cwbudde/algo-vox/vox"
)

var (
	globalSynth  *vox.Synth
	sampleRate   float64
	elapsed      float64
	outputBuffer []float32
	dcBlock      *dsp.Biquad
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmNoteOn", js.FuncOf(wasmNoteOn))
	js.Global().Set("wasmNoteOff", js.FuncOf(wasmNoteOff))
	js.Global().Set("wasmPitchBend", js.FuncOf(wasmPitchBend))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM vox module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate = float64(args[0].Int())

	globalSynth = vox.NewSynth()
	globalSynth.EnsureEngine(sampleRate)
	elapsed = 0

	// Pre-allocate output buffer for 128 mono frames.
	outputBuffer = make([]float32, 128)

	// Re-init always rebuilds the filter (the sample rate may have
	// changed), but Reset clears its state explicitly rather than relying
	// on struct zero-values, since a host can call wasmInit to restart the
	// same session without a page reload.
	dcBlock = dsp.NewHighpass(30.0, float32(sampleRate), 0.707)
	dcBlock.Reset()

	println("Synth initialized at", int(sampleRate), "Hz")
	return nil
}

func wasmNoteOn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalSynth == nil {
		return nil
	}
	note := uint8(args[0].Int())
	velocity := args[1].Float()
	globalSynth.HandleEvent(elapsed, vox.NoteOnEvent{Note: note, Velocity: velocity})
	return nil
}

func wasmNoteOff(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	note := uint8(args[0].Int())
	globalSynth.HandleEvent(elapsed, vox.NoteOffEvent{Note: note})
	return nil
}

func wasmPitchBend(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return nil
	}
	value := args[0].Float()
	globalSynth.HandleEvent(elapsed, vox.PitchBendEvent{Value: value})
	return nil
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalSynth == nil {
		return 0
	}

	numFrames := args[0].Int()
	if numFrames > 128 {
		numFrames = 128
	}

	dt := 1.0 / sampleRate
	for i := 0; i < numFrames; i++ {
		s := dsp.FlushDenormals(float32(globalSynth.Process(dt)))
		outputBuffer[i] = dcBlock.Process(s)
		elapsed += dt
	}

	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
