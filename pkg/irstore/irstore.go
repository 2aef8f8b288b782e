// Package irstore implements the IR Store (§4.1): put/get/latest/history
// over the append-only DiagramIRVersion table.
//
// Grounded on pkg/services/session_service.go's ent.Tx transaction style
// (start transaction, build rows, commit-or-rollback) applied to IR
// persistence instead of alert session creation.
package irstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/ent/diagram"
	"github.com/diagramaut/diagramaut/ent/diagramirversion"
	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/ir"
	"github.com/diagramaut/diagramaut/pkg/irvalidate"
)

// Store wraps an ent client with the IR Store's put/get/latest/history
// operations.
type Store struct {
	client *ent.Client
}

// New builds an IR Store bound to an ent client.
func New(client *ent.Client) *Store {
	return &Store{client: client}
}

// Put validates a new IR version and then, in one transaction, creates or
// updates its Diagram row and writes the DiagramIRVersion row. It writes
// no rendered artifact and no audit record. The caller supplies candidate.ParentVersion;
// if it does not match the diagram's current latest_version, Put returns
// STALE_PARENT rather than silently rebasing (§4.13's optimistic
// concurrency contract).
func (s *Store) Put(ctx context.Context, candidate *ir.IR) (*ent.DiagramIRVersion, error) {
	if errs := irvalidate.Validate(candidate); len(errs) > 0 {
		reasons := make([]string, len(errs))
		for i, e := range errs {
			reasons[i] = e.Error()
		}
		return nil, apierr.WithReasons(apierr.ValidationFailed, "IR failed validation", reasons)
	}

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting IR store transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	diagramRow, err := tx.Diagram.Query().Where(diagram.IDEQ(candidate.DiagramID)).Only(ctx)
	isNewDiagram := ent.IsNotFound(err)
	if err != nil && !isNewDiagram {
		return nil, fmt.Errorf("querying diagram %q: %w", candidate.DiagramID, err)
	}

	currentLatest := 0
	if !isNewDiagram {
		currentLatest = diagramRow.LatestVersion
	}

	expectedParent := candidate.ParentVersion
	if (expectedParent == nil && currentLatest != 0) || (expectedParent != nil && *expectedParent != currentLatest) {
		return nil, apierr.New(apierr.StaleParent, fmt.Sprintf(
			"diagram %q latest version is %d, candidate declares parent_version %v", candidate.DiagramID, currentLatest, expectedParent))
	}

	nextVersion := currentLatest + 1
	candidate.Version = nextVersion

	if isNewDiagram {
		if _, err := tx.Diagram.Create().
			SetID(candidate.DiagramID).
			SetLatestVersion(nextVersion).
			Save(ctx); err != nil {
			return nil, fmt.Errorf("creating diagram %q: %w", candidate.DiagramID, err)
		}
	} else {
		if err := tx.Diagram.UpdateOneID(candidate.DiagramID).
			SetLatestVersion(nextVersion).
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("updating diagram %q latest_version: %w", candidate.DiagramID, err)
		}
	}

	nodes, err := toJSONSlice(candidate.Nodes)
	if err != nil {
		return nil, err
	}
	edges, err := toJSONSlice(candidate.Edges)
	if err != nil {
		return nil, err
	}
	zones, err := toJSONSlice(candidate.Zones)
	if err != nil {
		return nil, err
	}

	create := tx.DiagramIRVersion.Create().
		SetID(uuid.NewString()).
		SetDiagramID(candidate.DiagramID).
		SetVersion(nextVersion).
		SetDiagramType(diagramirversion.DiagramType(candidate.DiagramType)).
		SetNodes(nodes).
		SetEdges(edges).
		SetZones(zones).
		SetStatus(diagramirversion.StatusProposed)

	if candidate.ParentVersion != nil {
		create = create.SetParentVersion(*candidate.ParentVersion)
	}
	if candidate.GlobalIntent != nil {
		create = create.SetGlobalIntent(map[string]interface{}(candidate.GlobalIntent))
	}
	if candidate.NodeIntent != nil {
		create = create.SetNodeIntent(map[string]interface{}(candidate.NodeIntent))
	}
	if candidate.EdgeIntent != nil {
		create = create.SetEdgeIntent(map[string]interface{}(candidate.EdgeIntent))
	}
	if candidate.Metadata != nil {
		create = create.SetMetadata(map[string]interface{}(candidate.Metadata))
	}

	row, err := create.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("persisting IR version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing IR store transaction: %w", err)
	}

	return row, nil
}

// Get retrieves one specific version of a diagram.
func (s *Store) Get(ctx context.Context, diagramID string, version int) (*ent.DiagramIRVersion, error) {
	row, err := s.client.DiagramIRVersion.Query().
		Where(
			diagramirversion.DiagramIDEQ(diagramID),
			diagramirversion.VersionEQ(version),
		).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, apierr.New(apierr.NotFound, fmt.Sprintf("diagram %q version %d not found", diagramID, version))
		}
		return nil, fmt.Errorf("querying IR version: %w", err)
	}
	return row, nil
}

// Latest retrieves the most recent version of a diagram.
func (s *Store) Latest(ctx context.Context, diagramID string) (*ent.DiagramIRVersion, error) {
	diagramRow, err := s.client.Diagram.Query().Where(diagram.IDEQ(diagramID)).Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, apierr.New(apierr.NotFound, fmt.Sprintf("diagram %q not found", diagramID))
		}
		return nil, fmt.Errorf("querying diagram %q: %w", diagramID, err)
	}
	return s.Get(ctx, diagramID, diagramRow.LatestVersion)
}

// History returns every version of a diagram in ascending version order.
func (s *Store) History(ctx context.Context, diagramID string) ([]*ent.DiagramIRVersion, error) {
	rows, err := s.client.DiagramIRVersion.Query().
		Where(diagramirversion.DiagramIDEQ(diagramID)).
		Order(ent.Asc(diagramirversion.FieldVersion)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying IR history for diagram %q: %w", diagramID, err)
	}
	return rows, nil
}

// ToIR converts a persisted DiagramIRVersion row back into the in-memory
// ir.IR shape callers mutate (the Patch Engine and translators both
// operate on *ir.IR, never on the ent row directly). Uses the same
// JSON-roundtrip idiom as toJSONSlice, just run in the opposite
// direction.
func ToIR(row *ent.DiagramIRVersion) (*ir.IR, error) {
	doc := &ir.IR{
		DiagramID:     row.DiagramID,
		Version:       row.Version,
		ParentVersion: row.ParentVersion,
		DiagramType:   ir.DiagramType(row.DiagramType),
		Status:        ir.VersionStatus(row.Status),
	}

	if err := reencode(row.Nodes, &doc.Nodes); err != nil {
		return nil, fmt.Errorf("decoding nodes: %w", err)
	}
	if err := reencode(row.Edges, &doc.Edges); err != nil {
		return nil, fmt.Errorf("decoding edges: %w", err)
	}
	if err := reencode(row.Zones, &doc.Zones); err != nil {
		return nil, fmt.Errorf("decoding zones: %w", err)
	}
	if row.GlobalIntent != nil {
		doc.GlobalIntent = ir.Intent(row.GlobalIntent)
	}
	if row.NodeIntent != nil {
		doc.NodeIntent = ir.Intent(row.NodeIntent)
	}
	if row.EdgeIntent != nil {
		doc.EdgeIntent = ir.Intent(row.EdgeIntent)
	}
	if row.Metadata != nil {
		doc.Metadata = ir.Metadata(row.Metadata)
	}

	return doc, nil
}

// reencode round-trips src through JSON into dst, the inverse of
// toJSONSlice.
func reencode(src, dst interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// toJSONSlice round-trips a typed slice into the []map[string]interface{}
// shape ent.JSON fields expect, the same idiom pkg/ir/copy.go uses for
// IR.DeepCopy.
func toJSONSlice(v interface{}) ([]map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling IR field: %w", err)
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling IR field: %w", err)
	}
	if out == nil {
		out = []map[string]interface{}{}
	}
	return out, nil
}
