package vfs

// defaultFiles seed a freshly initialized filesystem, in inode order.
var defaultFiles = []struct {
	name     string
	contents string
}{
	{"elements", `Hydrogen 1 H 1.008 -259.2 -252.8
Helium 2 He 4.0026 -272.2 -268.9
Lithium 3 Li 6.94 180.5 1342
Beryllium 4 Be 9.0122 1280 2970
Boron 5 B 10.81 2076 3927
Carbon 6 C 12.011 3652 4827
Nitrogen 7 N 14.007 -210 -195.8
Oxygen 8 O 15.999 -219 -183
Fluorine 9 F 18.998 -219.6 -188
Neon 10 Ne 20.180 -249 -246`},
	{"dream", `A boat beneath a sunny sky,
Lingering onward dreamily
In an evening of July--

Children three that nestle near,
Eager eye and willing ear,
Pleased a simple tale to hear--

Long has paled that sunny sky:
Echoes fade and memories die.
Autumn frosts have slain July.

Still she haunts me, phantomwise,
Alice moving under skies
Never seen by waking eyes.

Children yet, the tale to hear,
Eager eye and willing ear,
Lovingly shall nestle near.

In a Wonderland they lie,
Dreaming as the days go by,
Dreaming as the summers die:

Ever drifting down the stream--
Lingering in the golden gleam--
Life, what is it but a dream?`},
	{"curious", `So Alice began telling them her
adventures from the time when she first
saw the White Rabbit. She was a little
nervous about it just at first, the two 
creatures got so close to her, one on
each side, and opened their eyes and
mouths so very wide, but she gained
courage as she went on. Her listeners
were perfectly quiet till she got to
the part about her repeating "You are
old, Father William," to the
Caterpillar, and the words all coming
different, and then the Mock Turtle
drew a long breath, and said "That's
very curious."`},
	{"hello", `print 'Hello world'`},
	{"greet", `io.write('What is your name? ')
name = io.read()
print('Hello,', name)`},
}
