package customize

type LayerKind string

const (
	LayerText  LayerKind = "text"
	LayerImage LayerKind = "image"
	LayerTint  LayerKind = "tint"
)

const (
	TintOpacity = 0.3
	TintBlend   = "multiply"
	ImageScale  = 1.0 / 3.0
)

// Layer est un calque posé sur l'image du produit, du bas vers le haut.
type Layer struct {
	Kind     LayerKind `json:"kind"`
	Color    string    `json:"color,omitempty"`
	Opacity  float64   `json:"opacity,omitempty"`
	Blend    string    `json:"blend,omitempty"`
	Text     string    `json:"text,omitempty"`
	Source   string    `json:"source,omitempty"`
	Scale    float64   `json:"scale,omitempty"`
	Centered bool      `json:"centered,omitempty"`
}

type Preview struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	BaseImage string  `json:"baseImage"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`
	Layers    []Layer `json:"layers"`
}

// TextColor choisit une couleur de texte lisible sur le vêtement.
func TextColor(garment string) string {
	switch garment {
	case "white", "yellow":
		return "black"
	}
	return "white"
}

func (s *Session) Preview() Preview {
	c := s.Customization
	p := Preview{
		ProductID: s.Product.ID,
		Name:      s.Product.Name,
		Price:     s.Product.Price,
		BaseImage: s.Product.Image,
		Color:     c.Color,
		Size:      c.Size,
		Layers:    []Layer{},
	}

	if c.Text != "" {
		p.Layers = append(p.Layers, Layer{
			Kind:     LayerText,
			Text:     c.Text,
			Color:    TextColor(c.Color),
			Centered: true,
		})
	}
	if c.Image != "" {
		p.Layers = append(p.Layers, Layer{
			Kind:     LayerImage,
			Source:   c.Image,
			Scale:    ImageScale,
			Centered: true,
		})
	}
	if c.Color != "" {
		p.Layers = append(p.Layers, Layer{
			Kind:    LayerTint,
			Color:   c.Color,
			Opacity: TintOpacity,
			Blend:   TintBlend,
		})
	}
	return p
}
