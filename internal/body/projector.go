package body

import "github.com/rlund/airsusp/internal/dynamo"

// Projector converts the four corner strut forces into a net vertical
// force and pitch/roll moments about the centre of mass.
//
// Sign convention (fixed, see projector tests): mount X is positive
// toward the front and mount Z positive toward the left, so a
// front-heavy force distribution yields a positive (nose-up) pitch
// moment and a left-heavy one a positive roll moment. Equal forces at
// all four corners yield exactly zero net moment.
type Projector struct {
	mounts [NumCorners]Attachment
}

func NewProjector(p Params) *Projector {
	return &Projector{mounts: p.Mounts}
}

// Project sums the corner forces and their first moments about the
// body axes. Forces are already resolved along the global vertical by
// the strut model.
func (pr *Projector) Project(f CornerForces) dynamo.NetLoad {
	var load dynamo.NetLoad
	for _, c := range Corners {
		load.Vertical += f[c]
		load.PitchMoment += f[c] * pr.mounts[c].X
		load.RollMoment += f[c] * pr.mounts[c].Z
	}
	return load
}
