package youtube

// sampleAtomFeed is a YouTube channel Atom feed with two uploads.
const sampleAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
  <title>Test Channel</title>
  <author>
    <name>Test Channel</name>
    <uri>https://www.youtube.com/channel/UCtest123456789012345678</uri>
  </author>
  <entry>
    <id>yt:video:dQw4w9WgXcQ</id>
    <yt:videoId>dQw4w9WgXcQ</yt:videoId>
    <yt:channelId>UCtest123456789012345678</yt:channelId>
    <title>Test Video 1</title>
    <published>2025-01-10T12:00:00+00:00</published>
    <updated>2025-01-10T12:00:00+00:00</updated>
    <media:group>
      <media:description>Test description 1</media:description>
      <media:thumbnail url="https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg" width="480" height="360"/>
      <media:community>
        <media:statistics views="1000000"/>
      </media:community>
    </media:group>
  </entry>
  <entry>
    <id>yt:video:test123abc</id>
    <yt:videoId>test123abc</yt:videoId>
    <yt:channelId>UCtest123456789012345678</yt:channelId>
    <title>Test Video 2</title>
    <published>2025-01-09T12:00:00+00:00</published>
    <updated>2025-01-09T12:00:00+00:00</updated>
    <media:group>
      <media:description>Test description 2</media:description>
      <media:thumbnail url="https://i.ytimg.com/vi/test123abc/hqdefault.jpg" width="480" height="360"/>
      <media:community>
        <media:statistics views="500"/>
      </media:community>
    </media:group>
  </entry>
</feed>`

// sampleEmptyAtomFeed is a channel feed with no uploads yet.
const sampleEmptyAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
  <title>Empty Channel</title>
  <author>
    <name>Empty Channel</name>
    <uri>https://www.youtube.com/channel/UCempty12345678901234567</uri>
  </author>
</feed>`
