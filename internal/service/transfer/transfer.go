// Package transfer implements JSON export and import of whole projects,
// including their elements, answers and relationships.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/repository"
	appErrors "worldloom-backend/pkg/errors"
)

// ArchiveVersion is the format version written by Export
const ArchiveVersion = 1

// Archive is the top-level export document. Import accepts any document
// carrying a version and a projects list; unknown extra fields are
// ignored.
type Archive struct {
	Version  int              `json:"version"`
	Projects []ProjectArchive `json:"projects"`
}

// ProjectArchive is one exported project with its full contents
type ProjectArchive struct {
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Elements      []ElementArchive      `json:"elements"`
	Relationships []RelationshipArchive `json:"relationships"`
}

// ElementArchive is one exported element. The ID is only used to resolve
// relationship endpoints inside the same archive; fresh IDs are assigned
// on import.
type ElementArchive struct {
	ID          string            `json:"id"`
	Category    string            `json:"category"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Answers     map[string]string `json:"answers,omitempty"`
}

// RelationshipArchive is one exported relationship referencing archive
// element IDs
type RelationshipArchive struct {
	SourceID    string `json:"source_id"`
	TargetID    string `json:"target_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ImportResult reports what an import actually created. Invalid entries
// are skipped with a reason instead of failing the whole archive.
type ImportResult struct {
	Projects      int      `json:"projects"`
	Elements      int      `json:"elements"`
	Relationships int      `json:"relationships"`
	Skipped       []string `json:"skipped,omitempty"`
}

// Service moves project data in and out of JSON archives
type Service struct {
	projects      repository.ProjectRepository
	elements      repository.ElementRepository
	relationships repository.RelationshipRepository
	logger        *zap.Logger
}

// NewService creates a transfer service
func NewService(
	projects repository.ProjectRepository,
	elements repository.ElementRepository,
	relationships repository.RelationshipRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:      projects,
		elements:      elements,
		relationships: relationships,
		logger:        logger,
	}
}

// ExportProject serializes one project with its elements and
// relationships
func (s *Service) ExportProject(ctx context.Context, userID, projectID string) ([]byte, error) {
	project, err := s.projects.FindProjectByID(ctx, userID, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFoundError("project not found")
		}
		return nil, appErrors.Wrap(err, "failed to load project")
	}

	archived, err := s.archiveProject(ctx, userID, project)
	if err != nil {
		return nil, err
	}

	return marshalArchive(Archive{Version: ArchiveVersion, Projects: []ProjectArchive{archived}})
}

// ExportAll serializes every project the user owns
func (s *Service) ExportAll(ctx context.Context, userID string) ([]byte, error) {
	projects, err := s.projects.FindProjectsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list projects")
	}

	archive := Archive{Version: ArchiveVersion, Projects: make([]ProjectArchive, 0, len(projects))}
	for _, project := range projects {
		archived, err := s.archiveProject(ctx, userID, project)
		if err != nil {
			return nil, err
		}
		archive.Projects = append(archive.Projects, archived)
	}
	return marshalArchive(archive)
}

func (s *Service) archiveProject(ctx context.Context, userID string, project *domain.Project) (ProjectArchive, error) {
	elements, err := s.elements.FindElementsByProject(ctx, userID, project.ID)
	if err != nil {
		return ProjectArchive{}, appErrors.Wrap(err, "failed to list elements")
	}
	relationships, err := s.relationships.FindRelationshipsByProject(ctx, userID, project.ID)
	if err != nil {
		return ProjectArchive{}, appErrors.Wrap(err, "failed to list relationships")
	}

	archived := ProjectArchive{
		Name:          project.Name,
		Description:   project.Description,
		Elements:      make([]ElementArchive, 0, len(elements)),
		Relationships: make([]RelationshipArchive, 0, len(relationships)),
	}
	for _, element := range elements {
		archived.Elements = append(archived.Elements, ElementArchive{
			ID:          element.ID,
			Category:    element.Category.String(),
			Name:        element.Name,
			Description: element.Description,
			Tags:        element.Tags,
			Answers:     element.Answers,
		})
	}
	for _, relationship := range relationships {
		archived.Relationships = append(archived.Relationships, RelationshipArchive{
			SourceID:    relationship.SourceID,
			TargetID:    relationship.TargetID,
			Type:        relationship.Type.String(),
			Description: relationship.Description,
		})
	}
	return archived, nil
}

func marshalArchive(archive Archive) ([]byte, error) {
	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to serialize archive")
	}
	return data, nil
}

// Import reads an archive and creates its projects under the user. Only
// the top-level shape is validated strictly; individual entries that
// fail validation are skipped and reported in the result.
func (s *Service) Import(ctx context.Context, userID string, data []byte) (*ImportResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, appErrors.NewValidationError("import file is not valid JSON")
	}
	if _, ok := raw["version"]; !ok {
		return nil, appErrors.NewValidationError("import file is missing the version field")
	}
	if _, ok := raw["projects"]; !ok {
		return nil, appErrors.NewValidationError("import file is missing the projects field")
	}

	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, appErrors.NewValidationError("import file does not match the archive format")
	}

	result := &ImportResult{}
	for i, archived := range archive.Projects {
		if err := s.importProject(ctx, userID, archived, result); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("project %d (%s): %v", i, archived.Name, err))
		}
	}

	s.logger.Info("archive imported",
		zap.String("userID", userID),
		zap.Int("projects", result.Projects),
		zap.Int("elements", result.Elements),
		zap.Int("relationships", result.Relationships),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *Service) importProject(ctx context.Context, userID string, archived ProjectArchive, result *ImportResult) error {
	project, err := domain.NewProject(userID, archived.Name, archived.Description)
	if err != nil {
		return err
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return appErrors.Wrap(err, "failed to create project")
	}
	result.Projects++

	// archive element IDs -> freshly assigned IDs
	idMap := make(map[string]*domain.Element, len(archived.Elements))
	for i, archivedElement := range archived.Elements {
		element, err := domain.NewElement(project.ID, domain.Category(archivedElement.Category), archivedElement.Name, archivedElement.Description, archivedElement.Tags)
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("element %d (%s): %v", i, archivedElement.Name, err))
			continue
		}
		for questionID, answer := range archivedElement.Answers {
			if err := element.SetAnswer(questionID, answer); err != nil {
				continue
			}
		}
		if err := s.elements.CreateElement(ctx, userID, element); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("element %d (%s): %v", i, archivedElement.Name, err))
			continue
		}
		result.Elements++
		if archivedElement.ID != "" {
			idMap[archivedElement.ID] = element
		}
	}

	for i, archivedRel := range archived.Relationships {
		source, sourceOK := idMap[archivedRel.SourceID]
		target, targetOK := idMap[archivedRel.TargetID]
		if !sourceOK || !targetOK {
			result.Skipped = append(result.Skipped, fmt.Sprintf("relationship %d: unknown endpoint", i))
			continue
		}
		relationship, err := domain.NewRelationship(source, target, domain.RelationshipType(archivedRel.Type), archivedRel.Description)
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("relationship %d: %v", i, err))
			continue
		}
		if err := s.relationships.CreateRelationship(ctx, userID, relationship); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("relationship %d: %v", i, err))
			continue
		}
		result.Relationships++
	}
	return nil
}
