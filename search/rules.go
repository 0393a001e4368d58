package search

import "github.com/jrsteele09/go-photos-proxy/media"

// Content categories understood by the upstream content filter.
const (
	CategoryLandscapes   = "LANDSCAPES"
	CategoryPeople       = "PEOPLE"
	CategorySelfies      = "SELFIES"
	CategoryFood         = "FOOD"
	CategoryTravel       = "TRAVEL"
	CategoryPets         = "PETS"
	CategoryAnimals      = "ANIMALS"
	CategoryCityscapes   = "CITYSCAPES"
	CategoryLandmarks    = "LANDMARKS"
	CategoryNight        = "NIGHT"
	CategoryFlowers      = "FLOWERS"
	CategoryGardens      = "GARDENS"
	CategorySport        = "SPORT"
	CategoryWeddings     = "WEDDINGS"
	CategoryBirthdays    = "BIRTHDAYS"
	CategoryHolidays     = "HOLIDAYS"
	CategoryDocuments    = "DOCUMENTS"
	CategoryReceipts     = "RECEIPTS"
	CategoryScreenshots  = "SCREENSHOTS"
	CategoryArchitecture = "ARCHITECTURE"
	CategoryArts         = "ARTS"
	CategoryFashion      = "FASHION"
	CategoryPerformances = "PERFORMANCES"
	CategoryCrafts       = "CRAFTS"
	CategoryHouses       = "HOUSES"
	CategoryWhiteboards  = "WHITEBOARDS"
	CategoryUtility      = "UTILITY"
)

// Rule maps any of its keywords to Category. Keywords are lower case single words.
type Rule struct {
	Keywords []string
	Category string
}

// MediaRule maps any of its keywords to a media type.
type MediaRule struct {
	Keywords  []string
	MediaType string
}

// Rules is evaluated as a set union: every rule with a matching keyword contributes its
// category. No keyword appears in more than one rule.
var Rules = []Rule{
	{Category: CategoryLandscapes, Keywords: []string{
		"landscape", "landscapes", "nature", "outdoor", "outdoors", "mountain", "mountains",
		"sunset", "sunsets", "sunrise", "sunrises", "scenery", "scenic", "lake", "lakes",
		"forest", "forests", "hill", "hills", "valley", "beach", "beaches", "ocean", "sea",
		"river", "waterfall", "desert", "snow",
	}},
	{Category: CategoryPeople, Keywords: []string{
		"people", "person", "persons", "face", "faces", "portrait", "portraits", "family",
		"friend", "friends", "group", "kids", "children", "baby",
	}},
	{Category: CategorySelfies, Keywords: []string{"selfie", "selfies"}},
	{Category: CategoryFood, Keywords: []string{
		"food", "foods", "meal", "meals", "dinner", "lunch", "breakfast", "brunch",
		"restaurant", "cooking", "dish", "dessert", "pizza", "coffee",
	}},
	{Category: CategoryTravel, Keywords: []string{
		"travel", "travels", "trip", "trips", "vacation", "vacations", "journey", "tourist",
		"tourism", "abroad", "roadtrip",
	}},
	{Category: CategoryPets, Keywords: []string{
		"pet", "pets", "cat", "cats", "dog", "dogs", "puppy", "puppies", "kitten", "kittens",
	}},
	{Category: CategoryAnimals, Keywords: []string{
		"animal", "animals", "wildlife", "bird", "birds", "zoo", "horse", "horses", "safari",
	}},
	{Category: CategoryCityscapes, Keywords: []string{
		"city", "cities", "cityscape", "cityscapes", "skyline", "urban", "street", "streets", "downtown",
	}},
	{Category: CategoryLandmarks, Keywords: []string{"landmark", "landmarks", "monument", "monuments", "tower"}},
	{Category: CategoryNight, Keywords: []string{"night", "nights", "nighttime", "stars", "moon", "fireworks"}},
	{Category: CategoryFlowers, Keywords: []string{"flower", "flowers", "bloom", "blossom", "roses", "tulips"}},
	{Category: CategoryGardens, Keywords: []string{"garden", "gardens", "park", "parks"}},
	{Category: CategorySport, Keywords: []string{
		"sport", "sports", "football", "soccer", "tennis", "basketball", "running", "cycling", "match",
	}},
	{Category: CategoryWeddings, Keywords: []string{"wedding", "weddings", "bride", "groom"}},
	{Category: CategoryBirthdays, Keywords: []string{"birthday", "birthdays", "cake"}},
	{Category: CategoryHolidays, Keywords: []string{
		"holiday", "holidays", "christmas", "halloween", "thanksgiving", "easter", "hanukkah",
	}},
	{Category: CategoryDocuments, Keywords: []string{"document", "documents", "paper", "papers", "letter", "passport"}},
	{Category: CategoryReceipts, Keywords: []string{"receipt", "receipts", "invoice", "invoices", "bill"}},
	{Category: CategoryScreenshots, Keywords: []string{"screenshot", "screenshots", "screen"}},
	{Category: CategoryArchitecture, Keywords: []string{"architecture", "building", "buildings", "bridge", "church"}},
	{Category: CategoryArts, Keywords: []string{"art", "arts", "painting", "paintings", "museum", "gallery", "sculpture"}},
	{Category: CategoryFashion, Keywords: []string{"fashion", "outfit", "outfits", "clothes", "dress"}},
	{Category: CategoryPerformances, Keywords: []string{
		"concert", "concerts", "performance", "performances", "theatre", "theater", "festival", "gig",
	}},
	{Category: CategoryCrafts, Keywords: []string{"craft", "crafts", "diy", "knitting", "pottery"}},
	{Category: CategoryHouses, Keywords: []string{"house", "houses", "home", "interior", "kitchen"}},
	{Category: CategoryWhiteboards, Keywords: []string{"whiteboard", "whiteboards"}},
	{Category: CategoryUtility, Keywords: []string{"utility", "qr", "barcode"}},
}

// MediaRules is ordered; the first matching rule wins so at most one media type is chosen.
var MediaRules = []MediaRule{
	{MediaType: media.TypeVideo, Keywords: []string{
		"video", "videos", "movie", "movies", "clip", "clips", "footage", "film", "films",
	}},
	{MediaType: media.TypePhoto, Keywords: []string{
		"photo", "photos", "picture", "pictures", "pic", "pics", "image", "images", "snapshot", "snapshots",
	}},
}

// DefaultMediaType is applied when categories match and no media keyword does.
const DefaultMediaType = media.TypePhoto
