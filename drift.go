package simplesurface

// MeshIdentitySignature is a cheap fingerprint of what a component renders.
// Two different meshes with the same counts compare equal; that miss is accepted.
type MeshIdentitySignature struct {
	Component ComponentId
	Mesh      AssetId
	Triangles int
	Vertices  int
}

func SignatureOf(c *SceneComponent) MeshIdentitySignature {
	sig := MeshIdentitySignature{Component: c.id}
	if c.mesh != nil {
		sig.Mesh = c.mesh.id
		sig.Triangles = c.mesh.TriangleCount()
		sig.Vertices = c.mesh.VertexCount()
	}
	return sig
}

type driftBaseline struct {
	count      int
	signatures map[*SceneComponent]MeshIdentitySignature
}

func (b *driftBaseline) capture(current []PathEntry) {
	b.count = len(current)
	b.signatures = make(map[*SceneComponent]MeshIdentitySignature, len(current))
	for _, e := range current {
		b.signatures[e.Component] = SignatureOf(e.Component)
	}
}

// DetectDrift reports whether actor changed since the last baseline: a different
// number of renderable components, a tracked component whose mesh fingerprint
// changed or that is gone, or a slot holding something other than an instance of
// overrideBase. The baseline is only updated when refresh is true.
func (l *MaterialOverrideLedger) DetectDrift(actor *Actor, overrideBase *MaterialAsset, refresh bool) bool {
	if !actor.IsValid() {
		return false
	}
	current := EnumerateRenderables(actor)
	drift := l.baseline.differs(actor, current, overrideBase)
	if refresh {
		l.baseline.capture(current)
	}
	return drift
}

// RefreshBaseline records actor's current renderable set as the drift baseline.
func (l *MaterialOverrideLedger) RefreshBaseline(actor *Actor) {
	if !actor.IsValid() {
		return
	}
	l.baseline.capture(EnumerateRenderables(actor))
}

func (b *driftBaseline) differs(actor *Actor, current []PathEntry, overrideBase *MaterialAsset) bool {
	if len(current) != b.count {
		return true
	}

	for c, sig := range b.signatures {
		if !c.IsValid() || c.owner != actor || !c.IsRenderable() {
			return true
		}
		if SignatureOf(c) != sig {
			return true
		}
	}

	if overrideBase == nil {
		return false
	}
	for _, e := range current {
		for slot := 0; slot < e.Component.NumMaterials(); slot++ {
			m := e.Component.GetMaterial(slot)
			if m != nil && !IsInstanceOf(m, overrideBase) {
				return true
			}
		}
	}
	return false
}
