package snapshot

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Source distinguishes user-authored items from AI-generated ones.
type Source string

const (
	SourceUser Source = "user"
	SourceAI   Source = "ai"
)

// OutputType classifies a final output artifact.
type OutputType string

const (
	OutputImage OutputType = "image"
	OutputVideo OutputType = "video"
)

// MessageMetadata carries optional context attached to a chat message.
type MessageMetadata struct {
	ReferencedSection string     `json:"referencedSection,omitempty"`
	Palette           []HexColor `json:"palette,omitempty"`
}

// Message is one entry in a session's chat transcript. Timestamps are
// milliseconds since the Unix epoch, matching the stored wire format.
type Message struct {
	ID        string           `json:"id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp int64            `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// MoodBoardImage is one image on the mood board.
type MoodBoardImage struct {
	ID            string `json:"id"`
	ImageURL      string `json:"imageUrl"`
	ImagePath     string `json:"imagePath,omitempty"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	PromptSnippet string `json:"promptSnippet,omitempty"`
}

// StoryboardScene is one scene on the storyboard. Order is the explicit
// narrative position and is independent of slice position.
type StoryboardScene struct {
	ID          string `json:"id"`
	ImageURL    string `json:"imageUrl"`
	ImagePath   string `json:"imagePath,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// HexColor is one entry in the color palette.
type HexColor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Hex  string `json:"hex"`
}

// Constraint is one creative constraint, tagged with its origin.
type Constraint struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Source    Source `json:"source"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
}

// SummaryDoc is the single narrative summary document, when present.
type SummaryDoc struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
	Source    Source `json:"source"`
}

// FinalOutput is one assembled image or video artifact, newest first.
type FinalOutput struct {
	ID          string     `json:"id"`
	Type        OutputType `json:"type"`
	PreviewURL  string     `json:"previewUrl"`
	PreviewPath string     `json:"previewPath,omitempty"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	CreatedAt   int64      `json:"createdAt"`
	Format      string     `json:"format"`
	Notes       string     `json:"notes,omitempty"`
	SavedPath   string     `json:"savedPath,omitempty"`
	SavedAt     int64      `json:"savedAt,omitempty"`
}

// Content groups the independently addressable content sections of a session.
type Content struct {
	MoodBoard    []MoodBoardImage  `json:"moodBoard"`
	Storyboard   []StoryboardScene `json:"storyboard"`
	HexCodes     []HexColor        `json:"hexCodes"`
	Constraints  []Constraint      `json:"constraints"`
	Summary      *SummaryDoc       `json:"summary"`
	FinalOutputs []FinalOutput     `json:"finalOutputs"`
}

// Snapshot is the full serializable state of one session.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Content  Content   `json:"content"`
}
