package identify

const (
	DefaultFinalWindow  = 1
	DefaultMinAmplitude = 0.05

	// flatFloor is the absolute output change treated as no change,
	// scaled by the operating level.
	flatFloor = 1e-12

	// tieTolerance is the relative RMSE margin a later method must beat
	// to replace an earlier one.
	tieTolerance = 1e-9
)

type Options struct {
	// FinalWindow is the number of trailing samples averaged to obtain the
	// settled output.
	FinalWindow int
	// FinalOutput, when set, is a settled output known independently of
	// the samples, for curves recorded before the response settled.
	FinalOutput *float64
	// MinAmplitude rejects curves whose total change is smaller than this
	// fraction of the output range.
	MinAmplitude float64
	// Methods are tried in order; earlier methods win ties.
	Methods []Method
}

func DefaultOptions() Options {
	return Options{
		FinalWindow:  DefaultFinalWindow,
		MinAmplitude: DefaultMinAmplitude,
		Methods:      Methods(),
	}
}

func (o Options) withDefaults() Options {
	if o.FinalWindow <= 0 {
		o.FinalWindow = DefaultFinalWindow
	}
	if o.MinAmplitude < 0 {
		o.MinAmplitude = 0
	}
	if len(o.Methods) == 0 {
		o.Methods = Methods()
	}
	return o
}
