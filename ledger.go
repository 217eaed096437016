package simplesurface

import (
	"maps"
	"slices"
)

// SlotMaterialSnapshot maps a material slot index to the material that held it
// at capture time. An empty AssetId records an empty slot.
type SlotMaterialSnapshot map[int]AssetId

func (s SlotMaterialSnapshot) Clone() SlotMaterialSnapshot {
	return maps.Clone(s)
}

// Slots returns the captured slot indices in ascending order.
func (s SlotMaterialSnapshot) Slots() []int {
	return slices.Sorted(maps.Keys(s))
}

// OverrideLedgerRecord is the persisted form of one captured component.
type OverrideLedgerRecord struct {
	Path  StructuralPath       `json:"path"`
	Slots SlotMaterialSnapshot `json:"slots"`
}

func (r OverrideLedgerRecord) Clone() OverrideLedgerRecord {
	return OverrideLedgerRecord{
		Path:  slices.Clone(r.Path),
		Slots: r.Slots.Clone(),
	}
}

// LiveOverrideMap pairs live component handles with their snapshots. Never persisted.
type LiveOverrideMap map[*SceneComponent]SlotMaterialSnapshot

type ledgerEntry struct {
	record OverrideLedgerRecord
	// nil or stale until resolved
	comp *SceneComponent
}

// MaterialOverrideLedger remembers what material sat in every slot before the
// override went on, keyed both by structural path (persisted) and by live handle.
type MaterialOverrideLedger struct {
	resolver MaterialResolver
	logger   Logger
	entries  []ledgerEntry
	baseline driftBaseline
}

func NewMaterialOverrideLedger(resolver MaterialResolver, logger Logger) *MaterialOverrideLedger {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &MaterialOverrideLedger{
		resolver: resolver,
		logger:   logger,
	}
}

func materialRef(m Material) AssetId {
	if m == nil {
		return ""
	}
	return m.AssetId()
}

func snapshotSlots(c *SceneComponent, override Material) SlotMaterialSnapshot {
	snap := make(SlotMaterialSnapshot, c.NumMaterials())
	for slot := 0; slot < c.NumMaterials(); slot++ {
		m := c.GetMaterial(slot)
		if override != nil && m == override {
			continue
		}
		snap[slot] = materialRef(m)
	}
	return snap
}

// CaptureAll snapshots every renderable component under actor. Slots already
// holding override are left out. It only reads state.
func CaptureAll(actor *Actor, override Material) []OverrideLedgerRecord {
	entries := EnumerateRenderables(actor)
	records := make([]OverrideLedgerRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, OverrideLedgerRecord{
			Path:  e.Path,
			Slots: snapshotSlots(e.Component, override),
		})
	}
	return records
}

// Capture replaces the ledger's state with a fresh CaptureAll of actor.
func (l *MaterialOverrideLedger) Capture(actor *Actor, override Material) {
	entries := EnumerateRenderables(actor)
	l.entries = make([]ledgerEntry, 0, len(entries))
	for _, e := range entries {
		l.entries = append(l.entries, ledgerEntry{
			record: OverrideLedgerRecord{Path: e.Path, Slots: snapshotSlots(e.Component, override)},
			comp:   e.Component,
		})
	}
	l.logger.Debugf("captured %d renderable components on %q", len(l.entries), actor.Name())
}

// Recapture re-snapshots actor after drift. Slots that currently hold the
// override keep whatever was captured for them before, so originals survive
// repeated reconciliation. Components that disappeared are pruned.
func (l *MaterialOverrideLedger) Recapture(actor *Actor, override Material) {
	previous := l.Live()
	entries := EnumerateRenderables(actor)
	next := make([]ledgerEntry, 0, len(entries))
	for _, e := range entries {
		snap := snapshotSlots(e.Component, override)
		if old, ok := previous[e.Component]; ok {
			for slot, ref := range old {
				if slot >= e.Component.NumMaterials() {
					continue
				}
				if _, fresh := snap[slot]; !fresh {
					snap[slot] = ref
				}
			}
		}
		next = append(next, ledgerEntry{
			record: OverrideLedgerRecord{Path: e.Path, Slots: snap},
			comp:   e.Component,
		})
	}
	l.logger.Debugf("recaptured %q: %d -> %d components", actor.Name(), len(l.entries), len(next))
	l.entries = next
}

// resolve returns the live component for an entry. Entries without a handle
// into actor fall back to their path; a handle that went stale means the
// component is gone and its path may now point at a sibling.
func (l *MaterialOverrideLedger) resolve(actor *Actor, e *ledgerEntry) (*SceneComponent, bool) {
	if e.comp != nil && e.comp.owner == actor {
		if e.comp.IsValid() && e.comp.IsRenderable() {
			return e.comp, true
		}
		return nil, false
	}
	c, ok := ResolvePath(actor.root, e.record.Path)
	if !ok || !c.IsValid() || !c.IsRenderable() {
		return nil, false
	}
	e.comp = c
	return c, true
}

// Apply puts override into every slot of every component the ledger tracks, or
// of every renderable component when the ledger is empty. Components are marked
// modified only when at least one slot actually changes. Returns slots changed.
func (l *MaterialOverrideLedger) Apply(actor *Actor, override Material) int {
	if !actor.IsValid() || override == nil {
		return 0
	}

	var targets []*SceneComponent
	if len(l.entries) == 0 {
		for _, e := range EnumerateRenderables(actor) {
			targets = append(targets, e.Component)
		}
	} else {
		for i := range l.entries {
			if c, ok := l.resolve(actor, &l.entries[i]); ok {
				targets = append(targets, c)
			}
		}
	}

	changed := 0
	for _, c := range targets {
		modified := false
		for slot := 0; slot < c.NumMaterials(); slot++ {
			if c.GetMaterial(slot) == override {
				continue
			}
			if !modified {
				c.Modify()
				modified = true
			}
			c.SetMaterial(slot, override)
			changed++
		}
	}
	return changed
}

// RestoreAll writes captured materials back. Records whose component cannot be
// found are dropped; slots whose material no longer resolves are left as they are.
// Records are kept otherwise. Returns slots restored.
func (l *MaterialOverrideLedger) RestoreAll(actor *Actor) int {
	if !actor.IsValid() {
		return 0
	}

	restoredComps := make(map[*SceneComponent]bool, len(l.entries))
	kept := l.entries[:0]
	restored := 0
	for i := range l.entries {
		e := l.entries[i]
		c, ok := l.resolve(actor, &e)
		if !ok || restoredComps[c] {
			l.logger.Debugf("dropping ledger record %s on %q: component not found", e.record.Path, actor.Name())
			continue
		}
		restoredComps[c] = true

		modified := false
		for _, slot := range e.record.Slots.Slots() {
			if slot >= c.NumMaterials() {
				continue
			}
			m, ok := l.resolveMaterial(e.record.Slots[slot])
			if !ok {
				l.logger.Debugf("material %s for %s slot %d no longer resolves", e.record.Slots[slot], c.Name(), slot)
				continue
			}
			if c.GetMaterial(slot) == m {
				continue
			}
			if !modified {
				c.Modify()
				modified = true
			}
			c.SetMaterial(slot, m)
			restored++
		}

		if path, err := ComputePath(c); err == nil {
			e.record.Path = path
		}
		kept = append(kept, e)
	}
	clear(l.entries[len(kept):])
	l.entries = kept
	return restored
}

func (l *MaterialOverrideLedger) resolveMaterial(ref AssetId) (Material, bool) {
	if ref == "" {
		return nil, true
	}
	if l.resolver == nil {
		return nil, false
	}
	return l.resolver.ResolveMaterial(ref)
}

// Serialize returns a deep copy of the path-keyed records. Paths of components
// that are still attached are recomputed first, so inserting, reordering or
// moving siblings after capture is reflected.
func (l *MaterialOverrideLedger) Serialize() []OverrideLedgerRecord {
	l.refreshPaths()
	out := make([]OverrideLedgerRecord, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.record.Clone())
	}
	return out
}

func (l *MaterialOverrideLedger) refreshPaths() {
	for i := range l.entries {
		e := &l.entries[i]
		if !e.comp.IsValid() || !attachedToRoot(e.comp) {
			continue
		}
		if path, err := ComputePath(e.comp); err == nil {
			e.record.Path = path
		}
	}
}

// attachedToRoot reports whether c hangs off its owner's root component.
func attachedToRoot(c *SceneComponent) bool {
	node := c
	for node.parent != nil {
		node = node.parent
	}
	return node == c.owner.root
}

// ReleaseForeign takes override instances of base that belong to some other
// actor's component out of actor's slots. A slot gets its captured original
// back when one resolves, and own otherwise. Returns slots changed.
func (l *MaterialOverrideLedger) ReleaseForeign(actor *Actor, base *MaterialAsset, own Material) int {
	if !actor.IsValid() || base == nil {
		return 0
	}
	captured := make(map[*SceneComponent]SlotMaterialSnapshot, len(l.entries))
	for i := range l.entries {
		if c, ok := l.resolve(actor, &l.entries[i]); ok {
			captured[c] = l.entries[i].record.Slots
		}
	}

	released := 0
	for _, e := range EnumerateRenderables(actor) {
		c := e.Component
		modified := false
		for slot := 0; slot < c.NumMaterials(); slot++ {
			m := c.GetMaterial(slot)
			if (own != nil && m == own) || !IsInstanceOf(m, base) || ownedBy(m, actor) {
				continue
			}
			next := own
			if ref, ok := captured[c][slot]; ok {
				if orig, ok := l.resolveMaterial(ref); ok {
					next = orig
				}
			}
			if !modified {
				c.Modify()
				modified = true
			}
			c.SetMaterial(slot, next)
			released++
		}
	}
	return released
}

// ownedBy reports whether m is an instance whose owner lives on actor.
func ownedBy(m Material, actor *Actor) bool {
	mi, ok := m.(*MaterialInstance)
	if !ok {
		return false
	}
	owner, ok := mi.Owner().(interface{ Owner() *Actor })
	return ok && owner.Owner() == actor
}

func (l *MaterialOverrideLedger) HasRecords() bool { return len(l.entries) > 0 }

// Live returns the live-handle view of the ledger, skipping stale handles.
func (l *MaterialOverrideLedger) Live() LiveOverrideMap {
	live := make(LiveOverrideMap, len(l.entries))
	for _, e := range l.entries {
		if e.comp.IsValid() {
			live[e.comp] = e.record.Slots
		}
	}
	return live
}

// Deserialize resolves persisted records against actor. Records that do not
// lead to a live renderable component are discarded.
func Deserialize(records []OverrideLedgerRecord, actor *Actor) LiveOverrideMap {
	live := make(LiveOverrideMap, len(records))
	for _, e := range resolveRecords(records, actor) {
		live[e.comp] = e.record.Slots
	}
	return live
}

func resolveRecords(records []OverrideLedgerRecord, actor *Actor) []ledgerEntry {
	if !actor.IsValid() {
		return nil
	}
	entries := make([]ledgerEntry, 0, len(records))
	for _, r := range records {
		c, ok := ResolvePath(actor.root, r.Path)
		if !ok || !c.IsValid() || !c.IsRenderable() {
			continue
		}
		entries = append(entries, ledgerEntry{record: r.Clone(), comp: c})
	}
	return entries
}

// Load replaces the ledger's state with records resolved against actor.
func (l *MaterialOverrideLedger) Load(records []OverrideLedgerRecord, actor *Actor) {
	l.entries = resolveRecords(records, actor)
	if dropped := len(records) - len(l.entries); dropped > 0 {
		l.logger.Debugf("discarded %d unresolvable ledger records on %q", dropped, actor.Name())
	}
}

// SetRecords stores records without resolving them. They are resolved lazily
// by Load, Apply or RestoreAll once an actor is available.
func (l *MaterialOverrideLedger) SetRecords(records []OverrideLedgerRecord) {
	l.entries = make([]ledgerEntry, 0, len(records))
	for _, r := range records {
		l.entries = append(l.entries, ledgerEntry{record: r.Clone()})
	}
}

// NeedsResolve reports whether there are records with no live handle yet.
func (l *MaterialOverrideLedger) NeedsResolve() bool {
	for _, e := range l.entries {
		if e.comp == nil {
			return true
		}
	}
	return false
}

func (l *MaterialOverrideLedger) Clear() {
	l.entries = nil
	l.baseline = driftBaseline{}
}
