package gemini

// Prompts shared by every extraction backend. Each asks for a single clean
// JSON payload; decodeJSON copes with models that wrap it in markdown anyway.

const recipeJSONShape = `Return a single JSON object with these keys:
"title" (string), "description" (string or null),
"prep_time_minutes" (number or null), "cook_time_minutes" (number or null),
"servings" (number, default 4), "cuisine" (string or null),
"meal_type" (array of strings from: breakfast, lunch, dinner, snack),
"tags" (array of strings),
"ingredients" (array of objects with "name", "quantity" (number or null),
"unit" (string or null), "category" (one of: Produce, Meat & Seafood, Dairy,
Bakery, Pantry, Frozen, Beverages, Other), "original_text" (the line as
written)),
"steps" (array of strings, one per instruction),
"confidence" (number between 0 and 1).
Do not wrap the JSON in markdown formatting.`

// OCRPrompt extracts a recipe from a photo of a cookbook page or a
// handwritten card.
const OCRPrompt = `You are reading a photo of a recipe (cookbook page, recipe
card, or handwritten note). Transcribe it faithfully; do not invent
ingredients or steps that are not visible. If part of the text is unreadable,
skip it and lower the confidence score. ` + recipeJSONShape

// URLExtractPrompt turns scraped web page text into a structured recipe.
const URLExtractPrompt = `The following text was scraped from a recipe web
page. Extract the recipe it describes, ignoring navigation, ads, comments and
life stories. Keep each ingredient's original wording in "original_text" and
parse quantity and unit where possible. ` + recipeJSONShape

// StorageScanPrompt identifies groceries in a fridge, freezer or pantry photo.
const StorageScanPrompt = `You are looking at a photo of the inside of a
fridge, freezer or pantry. List every distinct food item you can identify.
Return a single JSON object with one key "items": an array of objects with
"name" (string), "quantity" (number or null), "unit" (string or null),
"suggested_location" (one of: fridge, freezer, pantry),
"expiry_estimate_days" (number or null, a rough guess for perishables),
"confidence" (number between 0 and 1). Only include items you can actually
see. Do not wrap the JSON in markdown formatting.`

// SuggestPrompt asks for meal ideas given inventory and household recipes.
const SuggestPrompt = `Suggest up to 5 meals a household could cook, favoring
ingredients they already have and items close to expiry. Prefer their own
recipes when one fits. Return a single JSON object with one key "suggestions":
an array of objects with "title" (string), "description" (one sentence),
"meal_type" (breakfast, lunch, dinner or snack), "uses_inventory" (array of
on-hand item names the meal uses), "matching_recipe_id" (string or null, the
id of a household recipe listed below if the suggestion is that recipe).
Do not wrap the JSON in markdown formatting.`
