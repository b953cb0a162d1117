// Package locale holds the user-facing and model-facing strings for each
// supported language.
package locale

import (
	"fmt"
	"strings"
)

type Catalog struct {
	Tag string

	SystemInstruction string
	GreetingPrompt    string

	Welcome       string
	GenericError  string
	LimitReached  string
	WrongPin      string
	CorruptData   string
	NoSession     string
	MemoryFull    string
	InvalidPin    string
	PinMismatch   string
	Busy          string
	savedFormat   string
	foundFormat   string
	missingFormat string

	ToolSaveDescription      string
	ToolSaveKeyDescription   string
	ToolSaveValueDescription string
	ToolGetDescription       string
	ToolGetKeyDescription    string
	ToolGetAllDescription    string
}

func (c Catalog) Saved(key string) string {
	return fmt.Sprintf(c.savedFormat, key)
}

func (c Catalog) Found(key, value string) string {
	return fmt.Sprintf(c.foundFormat, key, value)
}

func (c Catalog) Missing(key string) string {
	return fmt.Sprintf(c.missingFormat, key)
}

var catalogs = map[string]Catalog{
	"ar": arabic,
	"en": english,
}

func Lookup(tag string) (Catalog, error) {
	c, ok := catalogs[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return Catalog{}, fmt.Errorf("unsupported locale %q", tag)
	}
	return c, nil
}

// MustLookup is for package-level defaults and tests.
func MustLookup(tag string) Catalog {
	c, err := Lookup(tag)
	if err != nil {
		panic(err)
	}
	return c
}

var arabic = Catalog{
	Tag: "ar",
	SystemInstruction: `أنت مساعد ذكاء اصطناعي ودود ومفيد، ومهمتك هي مساعدة المستخدمين على تذكر الأشياء. 
تتحدث اللغة العربية بطلاقة. 
عندما يطلب منك المستخدم حفظ معلومة، استخدم دالة 'saveUserData'. 
عندما يسألك المستخدم عن معلومة، استخدم دالة 'getUserData'.
بعد تنفيذ الدالة، قم بالرد على المستخدم بلغة طبيعية لتأكيد الإجراء أو تقديم المعلومة.
مثال: إذا قال المستخدم "احفظ أن لوني المفضل هو الأزرق"، يجب أن تستدعي saveUserData({key: "favoriteColor", value: "الأزرق"}).
مثال: إذا قال المستخدم "ما هو لوني المفضل؟"، يجب أن تستدعي getUserData({key: "favoriteColor"}).`,
	GreetingPrompt: "استدعِ الدالة getAllUserData لمراجعة كل المعلومات المحفوظة عن المستخدم، ثم رحّب به ترحيباً شخصياً ودوداً يستند إليها. إذا لم تكن هناك أي معلومات محفوظة، فقدّم ترحيباً عاماً واسأله كيف يمكنك مساعدته اليوم.",

	Welcome:       "مرحباً! أنا مساعدك الشخصي. كيف يمكنني مساعدتك اليوم؟",
	GenericError:  "عذراً، حدث خطأ ما. يرجى المحاولة مرة أخرى.",
	LimitReached:  "لقد وصلت إلى حد الاستخدام اليومي. يرجى المحاولة مرة أخرى غداً.",
	WrongPin:      "رمز PIN غير صحيح. حاول مرة أخرى.",
	CorruptData:   "فشل فك تشفير البيانات. قد يكون رمز PIN خاطئًا أو البيانات تالفة.",
	NoSession:     "خطأ: جلسة غير مصادق عليها.",
	MemoryFull:    "عذراً، الذاكرة ممتلئة. لا يمكن حفظ أكثر من 10 معلومات. يرجى حذف معلومة قديمة أولاً.",
	InvalidPin:    "يجب أن يتكون رمز PIN من 4 أرقام.",
	PinMismatch:   "رمزا PIN غير متطابقين. حاول مرة أخرى.",
	Busy:          "يرجى الانتظار حتى تكتمل الرسالة السابقة.",
	savedFormat:   "تم حفظ المعلومة بنجاح: %s",
	foundFormat:   "المعلومة التي وجدتها لـ %s هي: %s",
	missingFormat: "عذراً، لم أجد أي معلومة محفوظة بالمفتاح: %s",

	ToolSaveDescription:      "تحفظ معلومة عن المستخدم، مثل تاريخ ميلاده أو اسمه أو لونه المفضل.",
	ToolSaveKeyDescription:   `مفتاح المعلومة (باللغة الإنجليزية، مثل "birthday", "name", "favoriteColor")`,
	ToolSaveValueDescription: `قيمة المعلومة (مثلاً "1 يناير 2000")`,
	ToolGetDescription:       "تسترجع معلومة محفوظة عن المستخدم باستخدام مفتاحها.",
	ToolGetKeyDescription:    `مفتاح المعلومة المراد استرجاعها (باللغة الإنجليزية، مثل "birthday")`,
	ToolGetAllDescription:    "تسترجع كل المعلومات المحفوظة عن المستخدم. تُستخدم فقط عند بدء الجلسة لإعداد الترحيب.",
}

var english = Catalog{
	Tag: "en",
	SystemInstruction: `You are a friendly, helpful AI assistant whose job is to help users remember things.
When the user asks you to save a piece of information, call 'saveUserData'.
When the user asks about a piece of information, call 'getUserData'.
After the function runs, answer the user in natural language to confirm the action or provide the information.
Example: if the user says "remember that my favorite color is blue", call saveUserData({key: "favoriteColor", value: "blue"}).
Example: if the user says "what is my favorite color?", call getUserData({key: "favoriteColor"}).`,
	GreetingPrompt: "Call getAllUserData to review everything stored about the user, then greet them warmly and personally based on it. If nothing is stored, give a general greeting and ask how you can help today.",

	Welcome:       "Hello! I'm your personal assistant. How can I help you today?",
	GenericError:  "Sorry, something went wrong. Please try again.",
	LimitReached:  "You have reached the daily usage limit. Please try again tomorrow.",
	WrongPin:      "Incorrect PIN. Try again.",
	CorruptData:   "Could not decode your data. The PIN may be wrong or the data is damaged.",
	NoSession:     "Error: session is not authenticated.",
	MemoryFull:    "Sorry, memory is full. No more than 10 facts can be saved. Please delete an old one first.",
	InvalidPin:    "The PIN must be 4 digits.",
	PinMismatch:   "The PINs do not match. Try again.",
	Busy:          "Please wait for the previous message to finish.",
	savedFormat:   "Saved successfully: %s",
	foundFormat:   "The information I found for %s is: %s",
	missingFormat: "Sorry, I could not find anything saved under the key: %s",

	ToolSaveDescription:      "Saves a fact about the user, such as their birthday, name or favorite color.",
	ToolSaveKeyDescription:   `Fact key, in English (e.g. "birthday", "name", "favoriteColor")`,
	ToolSaveValueDescription: `Fact value (e.g. "1 January 2000")`,
	ToolGetDescription:       "Retrieves a saved fact about the user by its key.",
	ToolGetKeyDescription:    `Key of the fact to retrieve, in English (e.g. "birthday")`,
	ToolGetAllDescription:    "Retrieves every fact saved about the user. Only used when a session starts, to prepare the greeting.",
}
