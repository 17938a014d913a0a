package loader

import "github.com/nathoo/adriftcore/engine/taf"

// fieldKind is the shape of one schema entry.
type fieldKind int

const (
	kindInt fieldKind = iota
	kindBool
	kindString

	// kindList is a count line followed by that many elements. Elements
	// are records when elem is set, otherwise scalars of kind scalar.
	kindList

	// kindFixed is like kindList with a fixed count and no count line.
	kindFixed

	// kindRooms is one boolean line per room, with no count line.
	kindRooms

	// kindGroup is a nested record with no count line.
	kindGroup
)

// field is one entry of the story file layout. Fields absent from older
// versions are read only when the file is at least since.
type field struct {
	name   string
	kind   fieldKind
	elem   []field
	scalar fieldKind
	count  int
	since  taf.Version

	// sparse fixed elements whose first field is zero are not stored.
	sparse bool
}

func intField(name string) field    { return field{name: name, kind: kindInt} }
func boolField(name string) field   { return field{name: name, kind: kindBool} }
func stringField(name string) field { return field{name: name, kind: kindString} }
func roomsField(name string) field  { return field{name: name, kind: kindRooms} }

func group(name string, fields ...field) field {
	return field{name: name, kind: kindGroup, elem: fields}
}

func list(name string, fields ...field) field {
	return field{name: name, kind: kindList, elem: fields}
}

func scalarList(name string, k fieldKind) field {
	return field{name: name, kind: kindList, scalar: k}
}

func fixed(name string, n int, fields ...field) field {
	return field{name: name, kind: kindFixed, count: n, elem: fields}
}

func since(v taf.Version, f field) field {
	f.since = v
	return f
}

// directions is the number of exits stored per room.
const directions = 12

func resource(name string) field {
	return since(taf.V400, group(name,
		stringField("SoundFile"),
		intField("SoundLen"),
		stringField("GraphicFile"),
		intField("GraphicLen"),
	))
}

func where() field {
	return group("Where",
		intField("Type"),
		intField("Room"),
		roomsField("Rooms"),
	)
}

// storySchema is the line layout of a story file, in file order. Rooms
// come first so that per-room boolean lists know their length.
var storySchema = []field{
	group("Header",
		stringField("StartupText"),
		intField("StartRoom"),
		stringField("WinText"),
	),
	list("Rooms",
		stringField("Short"),
		stringField("Long"),
		func() field {
			f := fixed("Exits", directions,
				intField("Dest"),
				intField("Var1"),
				intField("Var2"),
				intField("Var3"),
			)
			f.sparse = true
			return f
		}(),
		resource("Res"),
		since(taf.V390, list("Alts",
			stringField("M1"),
			resource("Res1"),
			stringField("M2"),
			resource("Res2"),
			intField("Type"),
			intField("Var2"),
			intField("Var3"),
			intField("DisplayRoom"),
			since(taf.V400, intField("HideObjects")),
			since(taf.V400, stringField("Changed")),
		)),
	),
	group("Globals",
		stringField("GameName"),
		stringField("GameAuthor"),
		stringField("PlayerName"),
		stringField("PlayerDesc"),
		intField("PlayerGender"),
		intField("Perspective"),
		intField("MaxSize"),
		intField("MaxWt"),
		intField("Position"),
		intField("ParentObject"),
		intField("Task"),
		boolField("ShowExits"),
		boolField("EightPointCompass"),
		boolField("DispFirstRoom"),
		intField("WaitTurns"),
		stringField("DontUnderstand"),
		boolField("StatusBox"),
		stringField("StatusBoxText"),
		boolField("NoScoreNotify"),
		boolField("BattleSystem"),
		since(taf.V400, boolField("Sound")),
		since(taf.V400, boolField("Graphics")),
		resource("WinRes"),
	),
	list("Objects",
		stringField("Prefix"),
		stringField("Short"),
		scalarList("Alias", kindString),
		stringField("Description"),
		boolField("Static"),
		where(),
		intField("InitialPosition"),
		intField("Parent"),
		boolField("Container"),
		boolField("Surface"),
		intField("Capacity"),
		intField("SizeWeight"),
		intField("Openable"),
		intField("Key"),
		intField("CurrentState"),
		stringField("States"),
		boolField("StateListed"),
		intField("SitLie"),
		boolField("Wearable"),
		boolField("Edible"),
		boolField("Readable"),
		stringField("ReadText"),
		boolField("Weapon"),
		stringField("InRoomDesc"),
		intField("OnlyWhenNotMoved"),
		intField("Task"),
		boolField("TaskNotDone"),
		stringField("AltDesc"),
		since(taf.V400, fixed("Res", 2,
			stringField("SoundFile"),
			intField("SoundLen"),
			stringField("GraphicFile"),
			intField("GraphicLen"),
		)),
	),
	list("Tasks",
		scalarList("Command", kindString),
		stringField("CompleteText"),
		stringField("ReverseMessage"),
		stringField("RepeatText"),
		stringField("AdditionalMessage"),
		intField("ShowRoomDesc"),
		boolField("Repeatable"),
		boolField("Reversible"),
		scalarList("ReverseCommand", kindString),
		where(),
		stringField("Question"),
		stringField("Hint1"),
		stringField("Hint2"),
		list("Restrictions",
			intField("Type"),
			intField("Var1"),
			intField("Var2"),
			intField("Var3"),
			stringField("Var4"),
			stringField("FailMessage"),
		),
		stringField("RestrMask"),
		list("Actions",
			intField("Type"),
			intField("Var1"),
			intField("Var2"),
			intField("Var3"),
			intField("Var4"),
			intField("Var5"),
			stringField("Expr"),
		),
		scalarList("NPCWalkAlert", kindInt),
		boolField("SingleScore"),
		resource("Res"),
	),
	list("Events",
		stringField("Short"),
		intField("StarterType"),
		intField("StartTime"),
		intField("EndTime"),
		intField("TaskNum"),
		intField("RestartType"),
		boolField("TaskFinished"),
		intField("Time1"),
		intField("Time2"),
		stringField("StartText"),
		stringField("LookText"),
		stringField("FinishText"),
		where(),
		intField("PauseTask"),
		boolField("PauserCompleted"),
		intField("ResumeTask"),
		boolField("ResumerCompleted"),
		intField("PrefTime1"),
		stringField("PrefText1"),
		intField("PrefTime2"),
		stringField("PrefText2"),
		intField("Obj1"),
		intField("Obj1Dest"),
		intField("Obj2"),
		intField("Obj2Dest"),
		intField("Obj3"),
		intField("Obj3Dest"),
		intField("TaskAffected"),
		since(taf.V400, fixed("Res", 5,
			stringField("SoundFile"),
			intField("SoundLen"),
			stringField("GraphicFile"),
			intField("GraphicLen"),
		)),
	),
	list("NPCs",
		stringField("Prefix"),
		stringField("Name"),
		scalarList("Alias", kindString),
		stringField("Descr"),
		intField("StartRoom"),
		stringField("InRoomText"),
		intField("Gender"),
		intField("Task"),
		list("Topics",
			stringField("Subject"),
			stringField("Reply"),
			intField("Task"),
			stringField("AltReply"),
		),
		list("Walks",
			boolField("Loop"),
			intField("StartTask"),
			intField("CharTask"),
			intField("MeetChar"),
			intField("ObjectTask"),
			intField("MeetObject"),
			intField("StoppingTask"),
			scalarList("MoveTimes", kindInt),
			scalarList("Rooms", kindInt),
		),
		boolField("ShowEnterExit"),
		stringField("EnterText"),
		stringField("ExitText"),
		since(taf.V400, fixed("Res", 4,
			stringField("SoundFile"),
			intField("SoundLen"),
			stringField("GraphicFile"),
			intField("GraphicLen"),
		)),
	),
	list("RoomGroups",
		stringField("Name"),
		field{name: "List", kind: kindRooms},
	),
	list("Synonyms",
		stringField("Replacement"),
		stringField("Original"),
	),
	list("Variables",
		stringField("Name"),
		intField("Type"),
		stringField("Value"),
	),
	list("ALRs",
		stringField("Original"),
		stringField("Replacement"),
	),
	since(taf.V400, stringField("CompileDate")),
}
