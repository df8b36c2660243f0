package view

import "image"

// Observer receives notifications from a CameraView. It may implement any
// subset of ImageTakenObserver and CameraChangedObserver; methods it does
// not implement are simply not called.
type Observer interface{}

// ImageTakenObserver is told when the view has captured an image. img is
// the image as it appears in the view.
type ImageTakenObserver interface {
	CameraViewTookImage(v *CameraView, img image.Image)
}

// CameraChangedObserver is told when the view switched capture device.
type CameraChangedObserver interface {
	CameraViewChangedCamera(v *CameraView)
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are skipped.
type ObserverFuncs struct {
	ImageTaken    func(v *CameraView, img image.Image)
	CameraChanged func(v *CameraView)
}

func (f ObserverFuncs) CameraViewTookImage(v *CameraView, img image.Image) {
	if f.ImageTaken != nil {
		f.ImageTaken(v, img)
	}
}

func (f ObserverFuncs) CameraViewChangedCamera(v *CameraView) {
	if f.CameraChanged != nil {
		f.CameraChanged(v)
	}
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (o Observers) CameraViewTookImage(v *CameraView, img image.Image) {
	for _, obs := range o {
		if t, ok := obs.(ImageTakenObserver); ok {
			t.CameraViewTookImage(v, img)
		}
	}
}

func (o Observers) CameraViewChangedCamera(v *CameraView) {
	for _, obs := range o {
		if c, ok := obs.(CameraChangedObserver); ok {
			c.CameraViewChangedCamera(v)
		}
	}
}
