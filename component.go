package simplesurface

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type ComponentState int

const (
	StateInactive ComponentState = iota
	StateActivating
	StateActive
	StateDeactivating
	StateDestroying
	StateDestroyed
)

func (s ComponentState) String() string {
	switch s {
	case StateInactive:
		return "Inactive"
	case StateActivating:
		return "Activating"
	case StateActive:
		return "Active"
	case StateDeactivating:
		return "Deactivating"
	case StateDestroying:
		return "Destroying"
	case StateDestroyed:
		return "Destroyed"
	}
	return fmt.Sprintf("ComponentState(%d)", int(s))
}

// SimpleSurfaceComponent overrides every material slot under its actor with one
// dynamic simple surface instance and puts the original materials back when it
// is deactivated or destroyed.
type SimpleSurfaceComponent struct {
	// AutoActivate activates the component as soon as it is registered.
	AutoActivate bool
	// PollInterval throttles drift detection. Zero checks every tick.
	PollInterval time.Duration

	params SurfaceParameters
	assets *AssetServer
	base   *MaterialAsset
	logger Logger

	owner     *Actor
	material  *MaterialInstance
	ledger    *MaterialOverrideLedger
	state     ComponentState
	sincePoll time.Duration
}

func NewSimpleSurfaceComponent(assets *AssetServer, base *MaterialAsset, logger Logger) *SimpleSurfaceComponent {
	if logger == nil {
		logger = NewNopLogger()
	}
	var resolver MaterialResolver
	if assets != nil {
		resolver = assets
	}
	return &SimpleSurfaceComponent{
		AutoActivate: true,
		params:       DefaultSurfaceParameters(),
		assets:       assets,
		base:         base,
		logger:       logger,
		ledger:       NewMaterialOverrideLedger(resolver, logger),
	}
}

func (c *SimpleSurfaceComponent) State() ComponentState           { return c.state }
func (c *SimpleSurfaceComponent) Owner() *Actor                   { return c.owner }
func (c *SimpleSurfaceComponent) Material() *MaterialInstance     { return c.material }
func (c *SimpleSurfaceComponent) Parameters() SurfaceParameters   { return c.params }
func (c *SimpleSurfaceComponent) Ledger() *MaterialOverrideLedger { return c.ledger }

// Records returns the persisted form of the ledger.
func (c *SimpleSurfaceComponent) Records() []OverrideLedgerRecord {
	return c.ledger.Serialize()
}

// LoadRecords replaces the ledger with previously persisted records. Before
// registration they are kept unresolved until the component has an owner.
func (c *SimpleSurfaceComponent) LoadRecords(records []OverrideLedgerRecord) {
	if c.owner == nil {
		c.ledger.SetRecords(records)
		return
	}
	c.ledger.Load(records, c.owner)
}

func (c *SimpleSurfaceComponent) OnRegister(actor *Actor) {
	c.owner = actor
	c.initMaterial()
	if c.owner == nil {
		return
	}

	if c.ledger.HasRecords() && c.ledger.NeedsResolve() {
		c.ledger.Load(c.ledger.Serialize(), c.owner)
	}

	if c.AutoActivate {
		c.Activate()
	}
	if c.state == StateInactive {
		// A copy of an active actor still shows the source's instance
		var own Material
		if c.material != nil {
			own = c.material
		}
		if n := c.ledger.ReleaseForeign(c.owner, c.base, own); n > 0 {
			c.logger.Debugf("simple surface: released %d borrowed slots on %q", n, c.owner.Name())
		}
	}
}

// initMaterial makes sure this component owns its override instance. A copy made
// by duplication never inherits the source's instance.
func (c *SimpleSurfaceComponent) initMaterial() {
	if c.material != nil && c.material.Owner() == c {
		return
	}
	if c.assets == nil || c.base == nil {
		c.logger.Warnf("simple surface: no base material, override disabled")
		return
	}
	c.material = c.assets.CreateMaterialInstance(c.base, c, "SimpleSurfaceMaterial")
	c.params.ApplyTo(c.material)
}

func (c *SimpleSurfaceComponent) ready() bool {
	return c.owner.IsValid() && c.material != nil
}

func (c *SimpleSurfaceComponent) OnActivate()   { c.Activate() }
func (c *SimpleSurfaceComponent) OnDeactivate() { c.Deactivate() }

func (c *SimpleSurfaceComponent) Activate() {
	if c.state != StateInactive || !c.ready() {
		return
	}
	c.state = StateActivating
	if !c.ledger.HasRecords() {
		c.ledger.Capture(c.owner, c.material)
	}
	c.params.ApplyTo(c.material)
	changed := c.ledger.Apply(c.owner, c.material)
	c.ledger.RefreshBaseline(c.owner)
	c.sincePoll = 0
	c.state = StateActive
	c.logger.Debugf("simple surface active on %q, %d slots overridden", c.owner.Name(), changed)
}

func (c *SimpleSurfaceComponent) Deactivate() {
	if c.state != StateActive {
		return
	}
	c.state = StateDeactivating
	if c.owner.IsValid() {
		restored := c.ledger.RestoreAll(c.owner)
		c.logger.Debugf("simple surface inactive on %q, %d slots restored", c.owner.Name(), restored)
	}
	c.state = StateInactive
}

func (c *SimpleSurfaceComponent) OnTick(dt time.Duration) {
	if c.state != StateActive || !c.ready() {
		return
	}
	c.params.ApplyTo(c.material)

	c.sincePoll += dt
	if c.PollInterval > 0 && c.sincePoll < c.PollInterval {
		return
	}
	c.sincePoll = 0

	if c.ledger.DetectDrift(c.owner, c.base, false) {
		c.logger.Debugf("simple surface: change detected on %q, recapturing", c.owner.Name())
		c.ledger.Recapture(c.owner, c.material)
		c.ledger.Apply(c.owner, c.material)
		c.ledger.RefreshBaseline(c.owner)
	}
}

func (c *SimpleSurfaceComponent) OnDestroy() {
	if c.state == StateDestroying || c.state == StateDestroyed {
		return
	}
	c.state = StateDestroying
	if c.owner.IsValid() {
		c.ledger.RestoreAll(c.owner)
	}
	c.ledger.Clear()
	if c.assets != nil {
		c.assets.ReleaseMaterialInstance(c.material)
	}
	c.material = nil
	c.state = StateDestroyed
}

// OnPropertyChanged pushes the current parameters into the override instance.
func (c *SimpleSurfaceComponent) OnPropertyChanged(name string) {
	if c.material == nil {
		return
	}
	c.params.ApplyTo(c.material)
	c.logger.Debugf("simple surface: %s changed", name)
}

func (c *SimpleSurfaceComponent) setParams(p SurfaceParameters, name string) {
	c.params = p.Clamp()
	c.OnPropertyChanged(name)
}

func (c *SimpleSurfaceComponent) SetParameters(p SurfaceParameters) {
	c.setParams(p, "parameters")
}

func (c *SimpleSurfaceComponent) SetColor(color mgl32.Vec4) {
	p := c.params
	p.Color = color
	c.setParams(p, ParamColor)
}

func (c *SimpleSurfaceComponent) SetGlow(glow float32) {
	p := c.params
	p.Glow = glow
	c.setParams(p, ParamGlow)
}

func (c *SimpleSurfaceComponent) SetRoughness(v float32) {
	p := c.params
	p.Roughness = v
	c.setParams(p, ParamRoughness)
}

func (c *SimpleSurfaceComponent) SetMetalness(v float32) {
	p := c.params
	p.Metalness = v
	c.setParams(p, ParamMetalness)
}

func (c *SimpleSurfaceComponent) SetTexture(texture AssetId) {
	p := c.params
	p.Texture = texture
	c.setParams(p, ParamTexture)
}

func (c *SimpleSurfaceComponent) SetTextureIntensity(v float32) {
	p := c.params
	p.TextureIntensity = v
	c.setParams(p, ParamTextureIntensity)
}

func (c *SimpleSurfaceComponent) SetTextureScale(v float32) {
	p := c.params
	p.TextureScale = v
	c.setParams(p, ParamTextureScale)
}

func (c *SimpleSurfaceComponent) SetGridIntensity(v float32) {
	p := c.params
	p.GridIntensity = v
	c.setParams(p, ParamGridIntensity)
}

func (c *SimpleSurfaceComponent) SetGridParameters(grid GridParameters) {
	p := c.params
	p.Grid = grid
	c.setParams(p, ParamGridSize)
}

// Duplicate copies configuration and persisted records. The live map and the
// override instance stay behind; the copy builds its own on registration.
func (c *SimpleSurfaceComponent) Duplicate() ActorComponent {
	dup := NewSimpleSurfaceComponent(c.assets, c.base, c.logger)
	dup.AutoActivate = c.AutoActivate
	dup.PollInterval = c.PollInterval
	dup.params = c.params
	dup.ledger.SetRecords(c.ledger.Serialize())
	return dup
}
