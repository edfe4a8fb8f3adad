package settings

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of an override file:
//
//	overrides:
//	  - workspace_names: [MyApp]
//	    closest_parent_depth: 2
//	    design_pattern: "[parentPath]\\[solutionName] - [ideName]"
//
// A global overrides file applies to many workspaces, so each of its entries
// must name the workspaces it targets. Entries of a workspace-specific file
// may omit the workspace keys.
type Document struct {
	Overrides []Override `yaml:"overrides"`
}

// Override is one entry of an override file. Nil fields inherit.
type Override struct {
	WorkspacePaths []string `yaml:"workspace_paths,omitempty"`
	WorkspaceNames []string `yaml:"workspace_names,omitempty"`

	AppendedMarker      *string `yaml:"appended_marker,omitempty"`
	ClosestParentDepth  *int    `yaml:"closest_parent_depth,omitempty"`
	FarthestParentDepth *int    `yaml:"farthest_parent_depth,omitempty"`
	DesignPattern       *string `yaml:"design_pattern,omitempty"`
	BreakPattern        *string `yaml:"break_pattern,omitempty"`
	RunningPattern      *string `yaml:"running_pattern,omitempty"`
}

func parseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// matches reports whether the entry targets the given workspace. Comparison is
// case-insensitive: workspace files commonly live on case-insensitive volumes.
func (o *Override) matches(workspacePath, workspaceName string, requireKey bool) bool {
	if len(o.WorkspacePaths) == 0 && len(o.WorkspaceNames) == 0 {
		return !requireKey
	}
	clean := filepath.Clean(workspacePath)
	for _, p := range o.WorkspacePaths {
		if strings.EqualFold(filepath.Clean(p), clean) {
			return true
		}
	}
	for _, n := range o.WorkspaceNames {
		if strings.EqualFold(n, workspaceName) {
			return true
		}
	}
	return false
}

// apply copies the entry's set fields onto s.
func (o *Override) apply(s *Snapshot) {
	if o.AppendedMarker != nil {
		s.AppendedMarker = *o.AppendedMarker
	}
	if o.ClosestParentDepth != nil {
		s.ClosestParentDepth = *o.ClosestParentDepth
	}
	if o.FarthestParentDepth != nil {
		s.FarthestParentDepth = *o.FarthestParentDepth
	}
	if o.DesignPattern != nil {
		s.DesignPattern = o.DesignPattern
	}
	if o.BreakPattern != nil {
		s.BreakPattern = o.BreakPattern
	}
	if o.RunningPattern != nil {
		s.RunningPattern = o.RunningPattern
	}
}

// find returns the first entry of doc matching the workspace.
func (d *Document) find(workspacePath, workspaceName string, requireKey bool) *Override {
	if d == nil {
		return nil
	}
	for i := range d.Overrides {
		if d.Overrides[i].matches(workspacePath, workspaceName, requireKey) {
			return &d.Overrides[i]
		}
	}
	return nil
}
