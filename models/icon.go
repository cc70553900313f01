package models

// Icon — закрытый набор идентификаторов иконок категорий. Раньше фронтенд
// подбирал иконку по произвольной строке и молча падал на дефолт; здесь
// неизвестное значение нормализуется один раз при записи.
type Icon string

const (
	IconCircle   Icon = "circle"
	IconStar     Icon = "star"
	IconHeart    Icon = "heart"
	IconBook     Icon = "book"
	IconDumbbell Icon = "dumbbell"
	IconLeaf     Icon = "leaf"
	IconMoon     Icon = "moon"
	IconSun      Icon = "sun"
	IconWater    Icon = "water"
	IconRun      Icon = "run"
	IconCode     Icon = "code"
	IconMusic    Icon = "music"
	IconGift     Icon = "gift"
)

var iconGlyphs = map[Icon]string{
	IconCircle:   "●",
	IconStar:     "★",
	IconHeart:    "♥",
	IconBook:     "📖",
	IconDumbbell: "🏋",
	IconLeaf:     "🍃",
	IconMoon:     "🌙",
	IconSun:      "☀",
	IconWater:    "💧",
	IconRun:      "🏃",
	IconCode:     "⌨",
	IconMusic:    "♪",
	IconGift:     "🎁",
}

// ParseIcon нормализует свободный ввод: неизвестные значения становятся IconCircle.
func ParseIcon(s string) Icon {
	ic := Icon(s)
	if _, ok := iconGlyphs[ic]; ok {
		return ic
	}
	return IconCircle
}

// Glyph тотально определён: для любого значения Icon возвращает символ.
func (i Icon) Glyph() string {
	if g, ok := iconGlyphs[i]; ok {
		return g
	}
	return iconGlyphs[IconCircle]
}

// Valid сообщает, входит ли значение в закрытый набор.
func (i Icon) Valid() bool {
	_, ok := iconGlyphs[i]
	return ok
}
