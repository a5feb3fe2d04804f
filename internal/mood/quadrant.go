package mood

type Quadrant string

const (
	UpperDynamic  Quadrant = "Upper/Dynamic"
	UpperStatic   Quadrant = "Upper/Static"
	DownerDynamic Quadrant = "Downer/Dynamic"
	DownerStatic  Quadrant = "Downer/Static"
)

// Quadrants lists every quadrant in a stable order.
var Quadrants = []Quadrant{UpperDynamic, UpperStatic, DownerDynamic, DownerStatic}

// QuadrantOf classifies v by sign. Zero counts as positive on both axes.
func QuadrantOf(v Vector) Quadrant {
	switch {
	case v.X >= 0 && v.Y >= 0:
		return UpperDynamic
	case v.X >= 0:
		return UpperStatic
	case v.Y >= 0:
		return DownerDynamic
	default:
		return DownerStatic
	}
}

func (q Quadrant) Upper() bool {
	return q == UpperDynamic || q == UpperStatic
}

func (q Quadrant) Dynamic() bool {
	return q == UpperDynamic || q == DownerDynamic
}

// Primary is the label of the upper/downer axis.
func (q Quadrant) Primary() string {
	if q.Upper() {
		return "upper"
	}
	return "downer"
}

// Secondary is the label of the dynamic/static axis.
func (q Quadrant) Secondary() string {
	if q.Dynamic() {
		return "dynamic"
	}
	return "static"
}

func (q Quadrant) Valid() bool {
	for _, v := range Quadrants {
		if v == q {
			return true
		}
	}
	return false
}

// Classified is the persisted form of a mood. The labels are always derived
// from X and Y.
type Classified struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Quadrant  Quadrant `json:"quadrant"`
	Magnitude float64  `json:"magnitude"`
	Primary   string   `json:"primary"`
	Secondary string   `json:"secondary"`
}

func Classify(v Vector) Classified {
	q := QuadrantOf(v)
	return Classified{
		X:         v.X,
		Y:         v.Y,
		Quadrant:  q,
		Magnitude: v.Magnitude(),
		Primary:   q.Primary(),
		Secondary: q.Secondary(),
	}
}

// Vector returns the point the classification was made from.
func (c Classified) Vector() Vector {
	return Vector{X: c.X, Y: c.Y}
}
