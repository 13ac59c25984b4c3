package model

// CMSから読むだけのレコード。ここでは書き込まない。

type ImageRef struct {
	Type  string `json:"_type,omitempty"`
	Asset struct {
		Ref string `json:"_ref"`
	} `json:"asset"`
}

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// 公開用。productUrl / usageGuide は含めない。
type Product struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Icon          *ImageRef  `json:"icon,omitempty"`
	IconType      string     `json:"iconType,omitempty"`
	Categories    []Category `json:"categories,omitempty"`
	Platforms     []string   `json:"platforms,omitempty"`
	Price         int64      `json:"price"`
	OriginalPrice *int64     `json:"originalPrice,omitempty"`
	IsPaid        bool       `json:"isPaid"`
	Featured      bool       `json:"featured"`
	DemoURL       string     `json:"demoUrl,omitempty"`
}

// 公開用。courseUrl は含めない。
type Course struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Thumbnail     *ImageRef `json:"thumbnail,omitempty"`
	IconType      string    `json:"iconType,omitempty"`
	Level         string    `json:"level,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	LessonsCount  int       `json:"lessonsCount,omitempty"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"originalPrice,omitempty"`
	IsPaid        bool      `json:"isPaid"`
	Featured      bool      `json:"featured"`
}

type BlogPost struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Thumbnail   *ImageRef `json:"thumbnail,omitempty"`
	Content     []any     `json:"content,omitempty"`
	Category    string    `json:"category,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt string    `json:"publishedAt,omitempty"`
	ReadTime    int       `json:"readTime,omitempty"`
	Featured    bool      `json:"featured"`
}

type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Skill struct {
	Category string `json:"category"`
	Items    string `json:"items"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type SiteSettings struct {
	SiteName         string       `json:"siteName"`
	HeroTitle        string       `json:"heroTitle"`
	HeroSubtitle     string       `json:"heroSubtitle"`
	HeroBadge        string       `json:"heroBadge"`
	ProductsSubtitle string       `json:"productsSubtitle,omitempty"`
	CoursesSubtitle  string       `json:"coursesSubtitle,omitempty"`
	BlogSubtitle     string       `json:"blogSubtitle,omitempty"`
	AboutTitle       string       `json:"aboutTitle"`
	AboutContent     []any        `json:"aboutContent,omitempty"`
	AboutAvatar      *ImageRef    `json:"aboutAvatar,omitempty"`
	AboutName        string       `json:"aboutName"`
	AboutRole        string       `json:"aboutRole"`
	Stats            []Stat       `json:"stats"`
	Skills           []Skill      `json:"skills"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone,omitempty"`
	SocialLinks      []SocialLink `json:"socialLinks"`
}

// 入金後のメールでだけ使う。APIレスポンスに載せない。
type ProductSecret struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	ProductURL string `json:"productUrl"`
	UsageGuide string `json:"usageGuide"`
}

type CourseSecret struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	CourseURL string `json:"courseUrl"`
}
