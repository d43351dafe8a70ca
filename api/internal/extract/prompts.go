package extract

import "hotel-bot/api/internal/util"

type Prompts struct {
	General   string
	Oblique   string
	Structure string
}

// LoadPrompts берёт встроенные промпты; файлы в dir (или PROMPT_DIR) их переопределяют.
func LoadPrompts(dir string) Prompts {
	return Prompts{
		General:   util.LoadPrompt(dir, "extract_general", generalPrompt),
		Oblique:   util.LoadPrompt(dir, "extract_oblique", obliquePrompt),
		Structure: util.LoadPrompt(dir, "structure", structurePrompt),
	}
}

const generalPrompt = `You are reading a photo of a national identity document from Latin America
(Peru DNI, Venezuela cédula, Colombia cédula de ciudadanía, Ecuador cédula, Chile cédula/RUN, or similar).
The photo may be skewed, rotated, partially covered, blurred or badly lit.

Transcribe ALL visible text of the document verbatim, line by line, in reading order.
Pay special attention to: surnames and given names, the document number, the birth date,
the nationality or issuing country.
Do not translate, do not correct spelling, do not add explanations or formatting.
If a part is unreadable, skip it. Return plain text only.`

const obliquePrompt = `This photo of an identity document was taken at an angle, so the text may be
slanted, foreshortened or in perspective. Read it carefully field by field:

- NAMES: look for labels such as "APELLIDOS", "NOMBRES", "PRIMER APELLIDO", "PRE NOMBRES";
  the value is on the same line or the line right below.
- DOCUMENT NUMBER: usually 8 digits (Peru DNI), 7-8 digits with V- or E- prefix (Venezuela),
  8-10 digits (Colombia), or formatted like 12.345.678-9 (Chile).
- BIRTH DATE: look for "FECHA DE NACIMIENTO"; often written as DD MM YYYY.
- NATIONALITY: the country name in the header ("REPUBLICA DEL PERU", etc.) or a "NACIONALIDAD" field.

Transcribe every line you can read verbatim, keeping labels and values. Return plain text only.`

const structurePrompt = `You convert raw text transcribed from a Latin American identity document into JSON.

Supported documents:
- Peru DNI: 8-digit number, often near "DNI"; may have a check digit after a hyphen (ignore it).
- Venezuela cédula: 7-8 digits, prefixed by V- (national) or E- (foreign), may be dotted (12.345.678).
- Colombia cédula de ciudadanía: 8-10 digits, may be dotted.
- Ecuador cédula: 10 digits.
- Chile cédula: RUN formatted like 12.345.678-9.

Return ONLY a JSON object with exactly these keys:
{"full_name": string|null, "id_number": string|null, "birth_date": string|null, "nationality": string|null}

Rules:
- full_name: surnames and given names in UPPERCASE, without labels.
- id_number: digits only, no prefixes, dots or check digit.
- birth_date: DD/MM/YYYY.
- nationality: the nationality in Spanish uppercase (PERUANA, VENEZOLANA, COLOMBIANA, ECUATORIANA, CHILENA, ...).
- Use null for anything not present in the text. Never invent values.`
