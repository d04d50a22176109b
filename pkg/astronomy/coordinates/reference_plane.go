// Package coordinates defines the reference planes and origins that state
// vectors are expressed in, and the rotations between planes.
package coordinates

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	"gonum.org/v1/gonum/mat"

	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

// ReferencePlane is the orientation convention of a state vector
type ReferencePlane int

const (
	J2000 ReferencePlane = iota
	ECLIPJ2000
	INVARIABLE
	GALACTIC
	FK4
)

// Rotation matrices from the J2000 equator into each plane, row-major
var rotations = map[ReferencePlane][9]float64{
	J2000: {
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	},
	ECLIPJ2000: {
		1, 0, 0,
		0, 0.9174820620691818, 0.3977771559319137,
		0, -0.3977771559319137, 0.9174820620691818,
	},
	INVARIABLE: {
		-0.3023595432982142, 0.8743824933349968, 0.3795182677654754,
		-0.9527924404431956, -0.2888105590660314, -0.0936832539501452,
		0.0263975536104876, -0.389928162416098, 0.920429658444365,
	},
	GALACTIC: {
		-0.05487553939574252, -0.8734371047275961, -0.48383499177002515,
		0.4941094536277439, -0.44482959429757496, 0.7469822486998918,
		-0.8676661356833738, -0.19807638961301985, 0.4559837945214199,
	},
	FK4: {
		0.9999256794956877, 0.011181483239171792, 0.004859003772314386,
		-0.01118148322046629, 0.9999374848933135, -2.717029374400203e-5,
		-0.004859003815359271, -2.7162594714247048e-5, 0.9999881946023742,
	},
}

var planeNames = map[ReferencePlane]string{
	J2000:      "J2000",
	ECLIPJ2000: "ECLIPJ2000",
	INVARIABLE: "INVARIABLE",
	GALACTIC:   "GALACTIC",
	FK4:        "FK4",
}

// ParseReferencePlane accepts a plane name in any case
func ParseReferencePlane(s string) (ReferencePlane, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range planeNames {
		if n == name {
			return p, nil
		}
	}
	return J2000, errorsmod.Wrapf(ErrInvalidReferencePlane, "%q", s)
}

func (p ReferencePlane) String() string {
	if n, ok := planeNames[p]; ok {
		return n
	}
	return "UNKNOWN"
}

func (p ReferencePlane) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *ReferencePlane) UnmarshalText(b []byte) error {
	v, err := ParseReferencePlane(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// RotationMatrix returns the 3x3 rotation from J2000 into p
func (p ReferencePlane) RotationMatrix() (*mat.Dense, error) {
	r, ok := rotations[p]
	if !ok {
		return nil, errorsmod.Wrapf(ErrInvalidReferencePlane, "%d", int(p))
	}
	return mat.NewDense(3, 3, r[:]), nil
}

// Transform returns the matrix that maps vectors in from into vectors in to
func Transform(from, to ReferencePlane) (*mat.Dense, error) {
	rFrom, err := from.RotationMatrix()
	if err != nil {
		return nil, err
	}
	rTo, err := to.RotationMatrix()
	if err != nil {
		return nil, err
	}

	var inv mat.Dense
	if err := inv.Inverse(rFrom); err != nil {
		return nil, errorsmod.Wrapf(ErrSingularRotation, "%s: %s", from, err)
	}
	var out mat.Dense
	out.Mul(rTo, &inv)
	return &out, nil
}

// Rotate applies m to v
func Rotate(m mat.Matrix, v astromath.Vector3) astromath.Vector3 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v.Slice()))
	return astromath.FromSlice(out.RawVector().Data)
}
