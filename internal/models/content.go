package models

// Lesson is an awareness lesson about a natural remedy.
type Lesson struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Content     string   `yaml:"content"`
	Remedy      string   `yaml:"remedy"`
	Benefits    []string `yaml:"benefits"`
	Preparation string   `yaml:"preparation"`
	Cautions    string   `yaml:"cautions"`
}

// Remedy is a natural remedy listed on the location page.
type Remedy struct {
	Name         string   `yaml:"name"`
	LocalName    string   `yaml:"local_name"`
	Description  string   `yaml:"description"`
	Uses         []string `yaml:"uses"`
	Region       string   `yaml:"region"`
	Availability string   `yaml:"availability"`
}

// HealthResource is a nearby health facility.
type HealthResource struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Address     string `yaml:"address"`
	Phone       string `yaml:"phone,omitempty"`
	Description string `yaml:"description"`
	Region      string `yaml:"region"`
}

// MoodOption is a selectable mood on the mental health page.
type MoodOption struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Emoji       string `yaml:"emoji"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}

// CommonQuestion is a suggested prompt on the medicine page.
type CommonQuestion struct {
	Question string `yaml:"question"`
	Category string `yaml:"category"`
}

// FirstAidGuide is a short list of steps for a mental health crisis.
type FirstAidGuide struct {
	Title string   `yaml:"title"`
	Steps []string `yaml:"steps"`
}
