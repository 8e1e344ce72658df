package model

// Resources is a declarative resource request or capacity.
// CPU and GPU are whole or fractional device counts; Custom holds any
// additional named resources a node advertises (e.g. "fast_disk": 1).
type Resources struct {
	CPU    float64            `json:"cpu"`
	GPU    float64            `json:"gpu"`
	Custom map[string]float64 `json:"custom,omitempty"`
}

// ResourcesFromSpec builds a request from a flat name->quantity map.
// "CPU" defaults to 1 and "GPU" to 0 when absent; every other name is
// carried through as a custom resource with no default.
func ResourcesFromSpec(spec map[string]float64) Resources {
	r := Resources{CPU: 1, GPU: 0}
	for name, qty := range spec {
		switch name {
		case "CPU":
			r.CPU = qty
		case "GPU":
			r.GPU = qty
		default:
			if r.Custom == nil {
				r.Custom = make(map[string]float64)
			}
			r.Custom[name] = qty
		}
	}
	return r
}

// Fits reports whether a request of size r can be satisfied by free.
// A custom resource the free side does not advertise cannot fit.
func (r Resources) Fits(free Resources) bool {
	if r.CPU > free.CPU || r.GPU > free.GPU {
		return false
	}
	for name, qty := range r.Custom {
		if qty > free.Custom[name] {
			return false
		}
	}
	return true
}

// Add returns r grown by other.
func (r Resources) Add(other Resources) Resources {
	out := Resources{CPU: r.CPU + other.CPU, GPU: r.GPU + other.GPU}
	if len(r.Custom) > 0 || len(other.Custom) > 0 {
		out.Custom = make(map[string]float64, len(r.Custom)+len(other.Custom))
		for name, qty := range r.Custom {
			out.Custom[name] += qty
		}
		for name, qty := range other.Custom {
			out.Custom[name] += qty
		}
	}
	return out
}

// Sub returns r shrunk by other, clamped at zero.
func (r Resources) Sub(other Resources) Resources {
	out := Resources{CPU: max(r.CPU-other.CPU, 0), GPU: max(r.GPU-other.GPU, 0)}
	if len(r.Custom) > 0 {
		out.Custom = make(map[string]float64, len(r.Custom))
		for name, qty := range r.Custom {
			out.Custom[name] = max(qty-other.Custom[name], 0)
		}
	}
	return out
}
