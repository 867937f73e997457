package identify

import "fmt"

// Method is a two-point identification rule.
type Method struct {
	Name string
	Low  float64
	High float64
	fit  func(t1, t2 float64) (tau, theta float64)
}

var (
	Smith = Method{
		Name: "smith",
		Low:  0.283,
		High: 0.632,
		fit: func(t1, t2 float64) (float64, float64) {
			tau := 1.5 * (t2 - t1)
			return tau, t2 - tau
		},
	}

	Sundaresan = Method{
		Name: "sundaresan-krishnaswamy",
		Low:  0.353,
		High: 0.853,
		fit: func(t1, t2 float64) (float64, float64) {
			return 0.67 * (t2 - t1), 1.3*t1 - 0.29*t2
		},
	}
)

// Methods returns the built-in methods in tie-break order.
func Methods() []Method {
	return []Method{Smith, Sundaresan}
}

func MethodByName(name string) (Method, error) {
	for _, m := range Methods() {
		if m.Name == name {
			return m, nil
		}
	}
	switch name {
	case "a", "A":
		return Smith, nil
	case "b", "B", "sundaresan":
		return Sundaresan, nil
	}
	return Method{}, fmt.Errorf("unknown identification method: %s", name)
}
